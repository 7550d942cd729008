// Package planner wraps a route graph into a Planner that can be shared by
// concurrent callers: routes can be added while queries are served, queries
// are logged, traced, and counted.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rhartert/flightroutes/routes"
	"github.com/rhartert/flightroutes/routes/paths"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rhartert/flightroutes/planner"

type Config struct {
	// Namespace is the prefix of the Prometheus metrics registered by the
	// planner (e.g. "flightroutes" gives "flightroutes_queries_total"). It is
	// only used when metrics are enabled with WithMetrics.
	Namespace string
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{Namespace: "flightroutes"}
}

// Option configures optional dependencies of a Planner.
type Option func(*Planner)

// WithLogger sets the logger used by the planner. By default, nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithMetrics registers the planner's metrics with reg. Planners sharing a
// registry must use distinct Config.Namespace values. A nil reg keeps the
// metrics unregistered. See NewMetrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Planner) {
		p.metrics = NewMetrics(p.Cfg.Namespace, reg)
	}
}

// WithTracer sets the tracer used to create one span per query. By default,
// the tracer is obtained from the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Planner) {
		p.tracer = tracer
	}
}

// Planner answers cheapest route queries on a graph of routes. It is safe for
// concurrent use: AddRoute waits for in-flight queries to complete and queries
// never observe a partially added route.
type Planner struct {
	Cfg Config

	mu    sync.RWMutex
	graph *routes.RouteGraph

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New returns a new Planner with an empty graph.
func New(cfg Config, opts ...Option) *Planner {
	p := &Planner{
		Cfg:    cfg,
		graph:  routes.NewRouteGraph(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddRoute adds a route from origin to destination with the given cost. See
// routes.RouteGraph.AddEdge for the validation rules.
func (p *Planner) AddRoute(origin string, destination string, cost float64) error {
	p.mu.Lock()
	err := p.graph.AddEdge(origin, destination, cost)
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.metrics.observeRoute()
	p.logger.Debug("Route added.", "origin", origin, "destination", destination, "cost", cost)
	return nil
}

// AddRoutes adds the given routes in order. It stops at the first invalid
// route; the routes before it remain in the graph.
func (p *Planner) AddRoutes(edges []routes.Edge) error {
	for i, e := range edges {
		if err := p.AddRoute(e.From, e.To, e.Cost); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
	}
	return nil
}

// Cheapest returns the cheapest path from origin to destination.
//
// It returns a *routes.UnknownEndpointError if one of the airports is unknown
// and paths.Unreachable() with a nil error if there is no route between them.
// The context is checked before the search starts; the search itself runs to
// completion.
func (p *Planner) Cheapest(ctx context.Context, origin string, destination string) (paths.Path, error) {
	ctx, span := p.tracer.Start(ctx, "planner.Cheapest", trace.WithAttributes(
		attribute.String("route.origin", origin),
		attribute.String("route.destination", destination),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		p.metrics.observeQuery(OutcomeCanceled, 0, 0)
		span.SetStatus(codes.Error, err.Error())
		return paths.Unreachable(), err
	}

	p.mu.RLock()
	res, err := routes.Search(p.graph, origin, destination)
	p.mu.RUnlock()

	if err != nil {
		var unknown *routes.UnknownEndpointError
		if errors.As(err, &unknown) {
			p.metrics.observeQuery(OutcomeUnknownEndpoint, 0, 0)
			span.SetAttributes(attribute.String("route.outcome", OutcomeUnknownEndpoint))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.InfoContext(ctx, "Unknown airport.", "origin", origin, "destination", destination, "error", err)
		return paths.Unreachable(), err
	}

	outcome := OutcomeFound
	if !res.Path.Found() {
		outcome = OutcomeNoPath
	}
	p.metrics.observeQuery(outcome, res.Settled, res.Relaxed)
	span.SetAttributes(
		attribute.String("route.outcome", outcome),
		attribute.Int("route.settled", res.Settled),
		attribute.Int("route.relaxed", res.Relaxed),
	)
	if res.Path.Found() {
		span.SetAttributes(attribute.Float64("route.cost", res.Path.Cost()))
	}
	p.logger.DebugContext(ctx, "Query answered.",
		"origin", origin,
		"destination", destination,
		"outcome", outcome,
		"cost", res.Path.Cost(),
		"settled", res.Settled,
		"relaxed", res.Relaxed,
	)

	return res.Path, nil
}

// Airports returns the name of all the known airports in lexicographic order.
func (p *Planner) Airports() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.Nodes()
}

// Reachable returns the airports that can be reached from origin, origin
// included, in lexicographic order.
func (p *Planner) Reachable(origin string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return routes.Reachable(p.graph, origin)
}

// Costs returns the cost of the cheapest route from origin to every airport
// that can be reached from it.
func (p *Planner) Costs(origin string) (map[string]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return routes.CostsFrom(p.graph, origin)
}
