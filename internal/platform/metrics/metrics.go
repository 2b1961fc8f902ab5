package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Verifications        *prometheus.CounterVec
	DisclosuresPersisted prometheus.Counter
	TokenRotations       prometheus.Counter
	AuthorityDuration    *prometheus.HistogramVec
	NotifyFailures       prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriport_verifications_total",
			Help: "Presentation verifications by protocol path and outcome",
		}, []string{"path", "outcome"}),
		DisclosuresPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriport_disclosures_persisted_total",
			Help: "SharedCredential rows persisted after successful verifications",
		}),
		TokenRotations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriport_token_rotations_total",
			Help: "Verifier auth token rotations triggered by authority responses",
		}),
		AuthorityDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veriport_authority_call_duration_seconds",
			Help:    "Duration of outbound verification authority calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		NotifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriport_notify_failures_total",
			Help: "Result notifications that could not be published",
		}),
	}
}

// RecordVerification increments the verification counter for a path/outcome pair.
func (m *Metrics) RecordVerification(path, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(path, outcome).Inc()
}

// RecordDisclosures adds persisted disclosure rows to the counter.
func (m *Metrics) RecordDisclosures(count int) {
	if m == nil {
		return
	}
	m.DisclosuresPersisted.Add(float64(count))
}

// RecordTokenRotation increments the rotation counter.
func (m *Metrics) RecordTokenRotation() {
	if m == nil {
		return
	}
	m.TokenRotations.Inc()
}

// ObserveAuthorityCall records the duration of one authority call.
func (m *Metrics) ObserveAuthorityCall(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.AuthorityDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordNotifyFailure increments the failed-notification counter.
func (m *Metrics) RecordNotifyFailure() {
	if m == nil {
		return
	}
	m.NotifyFailures.Inc()
}
