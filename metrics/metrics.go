// Package metrics defines the Prometheus instrumentation surface for
// resolver runs, grounded on the teacher's controllers/metrics.go
// pattern (package-level vars registered in init()). Unlike the
// teacher, this package registers against prometheus's own default
// registry rather than controller-runtime's metrics.Registry, since
// there is no controller-runtime manager in this module's scope.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resourcegraph_resolve_duration_seconds",
		Help:    "Time taken by a single Resolver.Resolve() call.",
		Buckets: prometheus.DefBuckets,
	})

	resolveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resourcegraph_resolve_total",
		Help: "Total number of resolve runs, successful or not.",
	})

	resolveErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resourcegraph_resolve_errors_total",
		Help: "Total number of failed resolve runs by error kind.",
	}, []string{"kind"})

	edgesTotal = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resourcegraph_edges_total",
		Help:    "Number of edges produced by a successful resolve run.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500},
	})

	depOrderLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resourcegraph_dep_order_length",
		Help: "Length of the dependency order produced by the last successful resolve run.",
	})
)

// Recorder implements resolver.MetricsRecorder against the package-level
// Prometheus collectors above.
type Recorder struct{}

// ObserveSeconds records a resolve run's wall-clock duration. Kept
// separate from ObserveResolve since the resolver package itself has no
// notion of timing — callers wrap Resolve() with their own clock.
func (Recorder) ObserveSeconds(seconds float64) {
	resolveDuration.Observe(seconds)
}

// ObserveResolve implements resolver.MetricsRecorder.
func (Recorder) ObserveResolve(edges, depOrderLen int, err error) {
	resolveTotal.Inc()
	if err != nil {
		resolveErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		return
	}
	edgesTotal.Observe(float64(edges))
	depOrderLength.Set(float64(depOrderLen))
}

// Handler exposes the collected metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
