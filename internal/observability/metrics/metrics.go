package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the intake and dispatch flows.
type LeadMetrics struct {
	receivedTotal    *prometheus.CounterVec
	dispatchTotal    *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
	rateLimitedTotal prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		receivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "intake",
			Name:      "leads_received_total",
			Help:      "Lead submissions by intake outcome",
		}, []string{"outcome"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "dispatch",
			Name:      "channel_total",
			Help:      "Channel delivery attempts by status",
		}, []string{"channel", "status"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadrelay",
			Subsystem: "dispatch",
			Name:      "channel_seconds",
			Help:      "Latency of a single channel delivery",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.receivedTotal, m.dispatchTotal, m.dispatchLatency, m.rateLimitedTotal)
	return m
}

// ObserveIntake counts one submission: accepted, honeypot, invalid or error.
func (m *LeadMetrics) ObserveIntake(outcome string) {
	if m == nil {
		return
	}
	m.receivedTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveDispatch(channel, status string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(channel, status).Inc()
	m.dispatchLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *LeadMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
