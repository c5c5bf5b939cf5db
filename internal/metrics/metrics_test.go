package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("PAID", OutcomeApplied)
		m.ObserveCache(true)
		m.ObservePlan(0.01, 3)
		m.ObserveInconsistency()
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("PAID", OutcomeApplied)
	m.ObserveTransition("PAID", OutcomeConflict)
	m.ObserveTransition("PAID", OutcomeConflict)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveInconsistency()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("PAID", OutcomeApplied)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("PAID", OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inconsistencies))
}
