package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records publish request outcomes for the /metrics endpoint.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	publishTotal   *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway's metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_publish_requests_total",
			Help: "Publish requests handled, by outcome.",
		}, []string{"outcome"}),
		publishLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_publish_duration_seconds",
			Help:    "Publish request handling time in seconds, by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.publishTotal, m.publishLatency)
	return m
}

// ObservePublish records one handled publish request.
func (m *Metrics) ObservePublish(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.publishTotal.WithLabelValues(outcome).Inc()
	m.publishLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
