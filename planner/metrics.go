package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes used as the "outcome" label of the queries counter.
const (
	OutcomeFound           = "found"
	OutcomeNoPath          = "no_path"
	OutcomeUnknownEndpoint = "unknown_endpoint"
	OutcomeCanceled        = "canceled"
)

// Metrics holds the Prometheus collectors updated by a Planner.
//
// Metrics exposed (prefixed with the configured namespace):
//
//   - queries_total (counter): path queries by outcome (found, no_path,
//     unknown_endpoint, canceled).
//   - routes_total (counter): routes added to the graph.
//   - settled_nodes (histogram): nodes extracted from the queue per query.
//   - relaxations (histogram): successful edge relaxations per query.
type Metrics struct {
	queries     *prometheus.CounterVec
	routes      prometheus.Counter
	settled     prometheus.Histogram
	relaxations prometheus.Histogram
}

// NewMetrics creates the planner's collectors and registers them with reg. If
// reg is nil, the collectors are updated but not registered anywhere.
//
// Registering two sets of collectors with the same namespace in the same
// registry panics. Pass prometheus.DefaultRegisterer explicitly to expose the
// metrics of a single planner globally.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	buckets := prometheus.ExponentialBuckets(1, 4, 10) // 1 to ~260k

	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Number of cheapest path queries by outcome",
		}, []string{"outcome"}),
		routes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Number of routes added to the graph",
		}),
		settled: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settled_nodes",
			Help:      "Number of nodes settled per cheapest path query",
			Buckets:   buckets,
		}),
		relaxations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relaxations",
			Help:      "Number of successful edge relaxations per cheapest path query",
			Buckets:   buckets,
		}),
	}
}

func (m *Metrics) observeQuery(outcome string, settled int, relaxed int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFound || outcome == OutcomeNoPath {
		m.settled.Observe(float64(settled))
		m.relaxations.Observe(float64(relaxed))
	}
}

func (m *Metrics) observeRoute() {
	if m == nil {
		return
	}
	m.routes.Inc()
}
