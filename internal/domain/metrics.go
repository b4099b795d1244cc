package domain

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// Culprit kinds used as the "kind" label of the culprits counter.
const (
	culpritIndividual = "individual"
	culpritRange      = "range"
)

// Metrics holds the Prometheus collectors of a single run. Every run gets its
// own registry so repeated runs in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	OracleCalls       *prometheus.CounterVec
	OracleErrors      prometheus.Counter
	OracleDuration    prometheus.Histogram
	Culprits          *prometheus.CounterVec
	RangeSearchRounds prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		OracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profbisect_oracle_calls_total",
			Help: "Decider invocations by verdict.",
		}, []string{"verdict"}),
		OracleErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "profbisect_oracle_errors_total",
			Help: "Decider invocations that failed before producing a verdict.",
		}),
		OracleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "profbisect_oracle_call_duration_seconds",
			Help:    "Wall time of a single decider invocation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		Culprits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profbisect_culprits_total",
			Help: "Culprits found, by kind.",
		}, []string{"kind"}),
		RangeSearchRounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "profbisect_range_search_rounds_total",
			Help: "Range search rounds attempted.",
		}),
	}
}

// Registry exposes the run's registry.
func (mt *Metrics) Registry() *prometheus.Registry {
	return mt.registry
}

// WriteTextfile writes the current values in the node-exporter textfile format.
func (mt *Metrics) WriteTextfile(path m.Path) error {
	return prometheus.WriteToTextfile(string(path), mt.Registry())
}

func (mt *Metrics) observeVerdict(verdict m.Verdict, elapsed time.Duration) {
	if mt == nil {
		return
	}

	mt.OracleCalls.WithLabelValues(verdict.String()).Inc()
	mt.OracleDuration.Observe(elapsed.Seconds())
}

func (mt *Metrics) observeError() {
	if mt == nil {
		return
	}

	mt.OracleErrors.Inc()
}

func (mt *Metrics) observeCulprit(kind string) {
	if mt == nil {
		return
	}

	mt.Culprits.WithLabelValues(kind).Inc()
}

func (mt *Metrics) observeRangeRound() {
	if mt == nil {
		return
	}

	mt.RangeSearchRounds.Inc()
}
