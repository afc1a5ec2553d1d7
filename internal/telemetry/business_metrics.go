package telemetry

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for the billing address flow.
// The recording helpers are safe to call on a nil *BusinessMetrics so that
// components built without metrics need no special casing.
type BusinessMetrics struct {
	// Address validation
	Validations        *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	KeystrokesRejected *prometheus.CounterVec

	// Saves
	BillingDetailsSaved *prometheus.CounterVec

	// Collaborators
	GatewaySyncFailures  *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	EventPublishFailures *prometheus.CounterVec
	CacheLookups         *prometheus.CounterVec
}

// NewBusinessMetrics creates the business metrics and registers them on reg.
func NewBusinessMetrics(reg prometheus.Registerer, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "billing"
	}
	factory := promauto.With(reg)

	subsystem := "address"

	return &BusinessMetrics{
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validations_total",
				Help:      "Total address validations by outcome",
			},
			[]string{"country", "result"}, // result: valid, invalid
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_failures_total",
				Help:      "Total field-level validation failures",
			},
			[]string{"country", "field"},
		),
		KeystrokesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "keystrokes_rejected_total",
				Help:      "Total keystrokes rejected by the input filter",
			},
			[]string{"country", "field"},
		),
		BillingDetailsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "billing_details_saved_total",
				Help:      "Total billing detail records saved",
			},
			[]string{"country"},
		),
		GatewaySyncFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gateway_sync_failures_total",
				Help:      "Total failed payment gateway customer updates",
			},
			[]string{"operation"}, // operation: create_customer, update_customer, attach_tax_id
		),
		GatewayLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gateway_api_duration_seconds",
				Help:      "Payment gateway call duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		EventPublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_publish_failures_total",
				Help:      "Total events that could not be published",
			},
			[]string{"subject"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Total billing details cache lookups",
			},
			[]string{"result"}, // result: hit, miss, error
		),
	}
}

// Business is the process-wide instance used by cmd/server.
var Business *BusinessMetrics

// InitBusinessMetrics creates the global instance on the default registerer.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(prometheus.DefaultRegisterer, namespace)
	return Business
}

// Validation records the outcome of one validation. failedFields lists the
// JSON names of the fields that failed.
func (m *BusinessMetrics) Validation(country string, failedFields []string) {
	if m == nil {
		return
	}
	country = countryLabel(country)
	if len(failedFields) == 0 {
		m.Validations.WithLabelValues(country, "valid").Inc()
		return
	}
	m.Validations.WithLabelValues(country, "invalid").Inc()
	for _, f := range failedFields {
		m.ValidationFailures.WithLabelValues(country, f).Inc()
	}
}

func (m *BusinessMetrics) KeystrokeRejected(country, field string) {
	if m == nil {
		return
	}
	m.KeystrokesRejected.WithLabelValues(countryLabel(country), field).Inc()
}

func (m *BusinessMetrics) Saved(country string) {
	if m == nil {
		return
	}
	m.BillingDetailsSaved.WithLabelValues(countryLabel(country)).Inc()
}

// GatewayCall records the duration of a gateway call and counts it as a
// failure when err is non-nil.
func (m *BusinessMetrics) GatewayCall(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.GatewayLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.GatewaySyncFailures.WithLabelValues(operation).Inc()
	}
}

func (m *BusinessMetrics) PublishFailed(subject string) {
	if m == nil {
		return
	}
	m.EventPublishFailures.WithLabelValues(subject).Inc()
}

func (m *BusinessMetrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// countryLabel bounds label cardinality to two-letter codes.
func countryLabel(country string) string {
	if len(country) != 2 {
		return "other"
	}
	return strings.ToUpper(country)
}
