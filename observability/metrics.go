package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus metrics.
type Metrics struct {
	OpsApplied  *prometheus.CounterVec
	OpsRejected *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec

	LiquidationsCompleted  prometheus.Counter
	LiquidationDebtCovered prometheus.Counter

	EventsPublished *prometheus.CounterVec
	EventsDropped   prometheus.Counter
}

// NewMetrics creates and registers all engine metrics.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
		0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0,
	}

	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stable_engine_ops_applied_total",
			Help: "Operations committed by the engine",
		}, []string{"op"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stable_engine_ops_rejected_total",
			Help: "Operations rejected (validation, invariant, external)",
		}, []string{"op", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stable_engine_op_duration_seconds",
			Help:    "Time to run a single engine operation",
			Buckets: latencyBuckets,
		}, []string{"op"}),

		LiquidationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stable_engine_liquidations_completed_total",
			Help: "Completed liquidations",
		}),

		LiquidationDebtCovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stable_engine_liquidation_debt_covered_total",
			Help: "Total stable-asset debt covered by liquidators",
		}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stable_engine_events_published_total",
			Help: "Mutation notifications published",
		}, []string{"type"}),

		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stable_engine_events_dropped_total",
			Help: "Notifications dropped after publish failure",
		}),
	}
}
