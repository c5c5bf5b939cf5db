// Package metrics holds the Prometheus collectors of the settlement engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitsettle"

// Metrics groups the collectors registered by New
type Metrics struct {
	transitions     *prometheus.CounterVec
	planCache       *prometheus.CounterVec
	planDuration    prometheus.Histogram
	planSize        prometheus.Histogram
	inconsistencies prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participant_transitions_total",
			Help:      "Participant status transitions by target status and outcome.",
		}, []string{"status", "outcome"}),
		planCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_requests_total",
			Help:      "Settlement plan cache lookups by result.",
		}, []string{"result"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_compute_seconds",
			Help:      "Time to aggregate balances and compute a settlement plan.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		planSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_transactions",
			Help:      "Number of transactions in computed settlement plans.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		inconsistencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_inconsistencies_total",
			Help:      "Ledgers whose balances did not sum to zero.",
		}),
	}

	reg.MustRegister(m.transitions, m.planCache, m.planDuration, m.planSize, m.inconsistencies)
	return m
}

// Transition outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
)

// ObserveTransition counts one transition attempt
func (m *Metrics) ObserveTransition(status, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status, outcome).Inc()
}

// ObserveCache counts a plan cache hit or miss
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.planCache.WithLabelValues(result).Inc()
}

// ObservePlan records the cost and size of a freshly computed plan
func (m *Metrics) ObservePlan(seconds float64, transactions int) {
	if m == nil {
		return
	}
	m.planDuration.Observe(seconds)
	m.planSize.Observe(float64(transactions))
}

// ObserveInconsistency counts a ledger that failed the zero-sum check
func (m *Metrics) ObserveInconsistency() {
	if m == nil {
		return
	}
	m.inconsistencies.Inc()
}
