package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dispatcher activity. A nil *Metrics records nothing.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	conflicts   *prometheus.CounterVec
}

// NewMetrics creates the dispatcher metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verifylog",
			Name:      "invocations_total",
			Help:      "Function invocations by outcome.",
		}, []string{"function", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verifylog",
			Name:      "invocation_duration_seconds",
			Help:      "Time spent in a function including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verifylog",
			Name:      "ledger_conflicts_total",
			Help:      "Transactions rejected by the ledger at commit.",
		}, []string{"function"}),
	}
}

func (m *Metrics) observe(function, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(function, outcome).Inc()
	m.duration.WithLabelValues(function).Observe(seconds)
}

func (m *Metrics) conflict(function string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(function).Inc()
}
