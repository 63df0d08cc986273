// Package observability holds process-wide logging and metrics
// plumbing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the mediation pipeline.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	AuditWriteFailures prometheus.Counter
}

// New registers the gateway metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_requests_total",
			Help: "Total number of mediated requests by terminal outcome",
		}, []string{"outcome"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetgate_stage_duration_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetgate_audit_write_failures_total",
			Help: "Total number of swallowed audit write failures",
		}),
	}
}

// ObserveOutcome counts one finished request.
func (m *Metrics) ObserveOutcome(outcome string) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records one stage latency in seconds.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveAuditWriteFailure counts one swallowed audit write failure.
func (m *Metrics) ObserveAuditWriteFailure() {
	m.AuditWriteFailures.Inc()
}
