package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveIntake("accepted")
	m.ObserveIntake("accepted")
	m.ObserveIntake("honeypot")
	m.ObserveDispatch("email", "delivered", 0.2)
	m.ObserveDispatch("telegram", "failed", 1.5)
	m.ObserveRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receivedTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receivedTotal.WithLabelValues("honeypot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatchTotal.WithLabelValues("telegram", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitedTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(m.dispatchLatency))
}

func TestLeadMetricsDefaultRegistry(t *testing.T) {
	m := NewLeadMetrics(nil)
	t.Cleanup(func() {
		prometheus.DefaultRegisterer.Unregister(m.receivedTotal)
		prometheus.DefaultRegisterer.Unregister(m.dispatchTotal)
		prometheus.DefaultRegisterer.Unregister(m.dispatchLatency)
		prometheus.DefaultRegisterer.Unregister(m.rateLimitedTotal)
	})
	m.ObserveIntake("invalid")
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveIntake("accepted")
	m.ObserveDispatch("email", "skipped", 0.1)
	m.ObserveRateLimited()
}
