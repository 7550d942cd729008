package planner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rhartert/flightroutes/routes"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var flights = []routes.Edge{
	{From: "Madrid", To: "Barcelona", Cost: 100},
	{From: "Madrid", To: "Paris", Cost: 150},
	{From: "Barcelona", To: "Paris", Cost: 120},
	{From: "Paris", To: "Londres", Cost: 200},
	{From: "Madrid", To: "Londres", Cost: 300},
	{From: "Barcelona", To: "Londres", Cost: 250},
	{From: "Ecuador", To: "Argentina", Cost: 750},
	{From: "Argentina", To: "Ecuador", Cost: 850},
	{From: "Ecuador", To: "Madrid", Cost: 350},
}

func newTestPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	p := New(DefaultConfig(), opts...)
	if err := p.AddRoutes(flights); err != nil {
		t.Fatalf("AddRoutes(): %s", err)
	}
	return p
}

func TestPlanner_Cheapest(t *testing.T) {
	p := newTestPlanner(t)

	testCases := []struct {
		desc      string
		origin    string
		dest      string
		wantCost  float64
		wantNodes []string
		wantFound bool
		wantErr   bool
	}{
		{
			desc:      "direct flight",
			origin:    "Madrid",
			dest:      "Londres",
			wantCost:  300,
			wantNodes: []string{"Madrid", "Londres"},
			wantFound: true,
		},
		{
			desc:      "with stopover",
			origin:    "Ecuador",
			dest:      "Londres",
			wantCost:  650,
			wantNodes: []string{"Ecuador", "Madrid", "Londres"},
			wantFound: true,
		},
		{
			desc:      "no route",
			origin:    "Londres",
			dest:      "Madrid",
			wantNodes: []string{},
		},
		{
			desc:    "unknown airport",
			origin:  "Tokio",
			dest:    "Madrid",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, gotErr := p.Cheapest(context.Background(), tc.origin, tc.dest)

			if tc.wantErr {
				var unknown *routes.UnknownEndpointError
				if !errors.As(gotErr, &unknown) {
					t.Fatalf("Cheapest(): want *routes.UnknownEndpointError, got %v", gotErr)
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("Cheapest(): want no error, got %s", gotErr)
			}
			if got.Found() != tc.wantFound {
				t.Errorf("Found(): want %t, got %t", tc.wantFound, got.Found())
			}
			if tc.wantFound && got.Cost() != tc.wantCost {
				t.Errorf("Cost(): want %v, got %v", tc.wantCost, got.Cost())
			}
			if diff := cmp.Diff(tc.wantNodes, got.Nodes()); diff != "" {
				t.Errorf("Nodes(): mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanner_Cheapest_canceled(t *testing.T) {
	p := newTestPlanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := p.Cheapest(ctx, "Madrid", "Londres")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cheapest(): want context.Canceled, got %v", err)
	}
	if got.Found() {
		t.Errorf("Cheapest(): want no path, got %s", got)
	}
}

func TestPlanner_AddRoutes_invalid(t *testing.T) {
	p := New(DefaultConfig())

	err := p.AddRoutes([]routes.Edge{
		{From: "A", To: "B", Cost: 1},
		{From: "B", To: "C", Cost: -1},
		{From: "C", To: "D", Cost: 1},
	})

	var invalid *routes.InvalidEdgeError
	if !errors.As(err, &invalid) {
		t.Fatalf("AddRoutes(): want *routes.InvalidEdgeError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "route 1:") {
		t.Errorf("AddRoutes(): want error about route 1, got %q", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, p.Airports()); diff != "" {
		t.Errorf("Airports(): mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanner_Reachable(t *testing.T) {
	p := newTestPlanner(t)
	want := []string{"Barcelona", "Londres", "Paris"}

	got, err := p.Reachable("Barcelona")

	if err != nil {
		t.Fatalf("Reachable(): want no error, got %s", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reachable(): mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanner_Costs(t *testing.T) {
	p := newTestPlanner(t)
	want := map[string]float64{"Barcelona": 0, "Paris": 120, "Londres": 250}

	got, err := p.Costs("Barcelona")

	if err != nil {
		t.Fatalf("Costs(): want no error, got %s", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Costs(): mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanner_metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := newTestPlanner(t, WithMetrics(reg))
	ctx := context.Background()

	p.Cheapest(ctx, "Madrid", "Londres")
	p.Cheapest(ctx, "Ecuador", "Paris")
	p.Cheapest(ctx, "Londres", "Madrid")
	p.Cheapest(ctx, "Tokio", "Madrid")

	testCases := []struct {
		outcome string
		want    float64
	}{
		{OutcomeFound, 2},
		{OutcomeNoPath, 1},
		{OutcomeUnknownEndpoint, 1},
		{OutcomeCanceled, 0},
	}
	for _, tc := range testCases {
		got := testutil.ToFloat64(p.metrics.queries.WithLabelValues(tc.outcome))
		if got != tc.want {
			t.Errorf("queries_total{outcome=%q}: want %v, got %v", tc.outcome, tc.want, got)
		}
	}
	if got := testutil.ToFloat64(p.metrics.routes); got != float64(len(flights)) {
		t.Errorf("routes_total: want %d, got %v", len(flights), got)
	}
	n, err := testutil.GatherAndCount(reg, "flightroutes_relaxations")
	if err != nil {
		t.Fatalf("GatherAndCount(): %s", err)
	}
	if n != 1 {
		t.Errorf("relaxations: want 1 gathered metric, got %d", n)
	}
}

// sampleCount returns the number of observations of the histogram name
// gathered from reg.
func sampleCount(t *testing.T, reg prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather(): %s", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("Gather(): metric %q not found", name)
	return 0
}

func TestPlanner_metrics_unknownEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := newTestPlanner(t, WithMetrics(reg))
	ctx := context.Background()

	p.Cheapest(ctx, "Tokio", "Madrid")
	p.Cheapest(ctx, "Madrid", "Tokio")

	for _, name := range []string{"flightroutes_settled_nodes", "flightroutes_relaxations"} {
		if got := sampleCount(t, reg, name); got != 0 {
			t.Errorf("%s: want no observation, got %d", name, got)
		}
	}

	p.Cheapest(ctx, "Madrid", "Londres")

	for _, name := range []string{"flightroutes_settled_nodes", "flightroutes_relaxations"} {
		if got := sampleCount(t, reg, name); got != 1 {
			t.Errorf("%s: want 1 observation, got %d", name, got)
		}
	}
}

func TestPlanner_metrics_nilRegisterer(t *testing.T) {
	p1 := newTestPlanner(t, WithMetrics(nil))
	p2 := newTestPlanner(t, WithMetrics(nil))

	p1.Cheapest(context.Background(), "Madrid", "Londres")

	if got := testutil.ToFloat64(p1.metrics.queries.WithLabelValues(OutcomeFound)); got != 1 {
		t.Errorf("p1 queries_total{outcome=%q}: want 1, got %v", OutcomeFound, got)
	}
	if got := testutil.ToFloat64(p2.metrics.queries.WithLabelValues(OutcomeFound)); got != 0 {
		t.Errorf("p2 queries_total{outcome=%q}: want 0, got %v", OutcomeFound, got)
	}
}

func TestPlanner_tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	p := newTestPlanner(t, WithTracer(tp.Tracer("test")))

	p.Cheapest(context.Background(), "Ecuador", "Londres")
	p.Cheapest(context.Background(), "Tokio", "Londres")

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("want 2 spans, got %d", len(spans))
	}

	found := spans[0]
	if found.Name != "planner.Cheapest" {
		t.Errorf("span name: want %q, got %q", "planner.Cheapest", found.Name)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range found.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["route.outcome"].AsString(); got != OutcomeFound {
		t.Errorf("route.outcome: want %q, got %q", OutcomeFound, got)
	}
	if got := attrs["route.cost"].AsFloat64(); got != 650 {
		t.Errorf("route.cost: want 650, got %v", got)
	}

	if got := spans[1].Status.Code; got != codes.Error {
		t.Errorf("unknown airport span status: want %v, got %v", codes.Error, got)
	}
}

func TestPlanner_logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newTestPlanner(t, WithLogger(logger))
	buf.Reset()

	p.Cheapest(context.Background(), "Madrid", "Paris")

	out := buf.String()
	for _, want := range []string{`"msg":"Query answered."`, `"outcome":"found"`, `"cost":150`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output: want %s in %s", want, out)
		}
	}
}

func TestPlanner_concurrentQueries(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, err := p.Cheapest(ctx, "Ecuador", "Londres")
			if err != nil {
				errs <- err
				return
			}
			// New routes can only make the route cheaper.
			if got.Cost() > 650 {
				errs <- errors.New("route got more expensive: " + got.String())
			}
		}()
		go func(i int) {
			defer wg.Done()
			if err := p.AddRoute("Lima", "Quito", float64(i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
