package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics_Validation(t *testing.T) {
	m := NewBusinessMetrics(prometheus.NewRegistry(), "test")

	m.Validation("US", nil)
	m.Validation("US", []string{"postalCode"})
	m.Validation("IN", []string{"postalCode", "city"})
	m.Validation("not-a-code", []string{"country"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("US", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("US", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("IN", "city")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("other", "country")))
}

func TestBusinessMetrics_GatewayCall(t *testing.T) {
	m := NewBusinessMetrics(prometheus.NewRegistry(), "test")

	m.GatewayCall("update_customer", time.Now(), nil)
	m.GatewayCall("update_customer", time.Now(), errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewaySyncFailures.WithLabelValues("update_customer")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayLatency))
}

func TestBusinessMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics(reg, "test")
	m.CacheLookup("hit")
	m.Saved("GB")
	m.PublishFailed("billing.details.saved")
	m.KeystrokeRejected("AU", "postalCode")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_address_cache_lookups_total")
	assert.Contains(t, names, "test_address_billing_details_saved_total")
	assert.Contains(t, names, "test_address_event_publish_failures_total")
	assert.Contains(t, names, "test_address_keystrokes_rejected_total")

	// A second set on a fresh registry must not collide.
	assert.NotPanics(t, func() { NewBusinessMetrics(prometheus.NewRegistry(), "test") })
}

func TestBusinessMetrics_NilIsNoop(t *testing.T) {
	var m *BusinessMetrics

	assert.NotPanics(t, func() {
		m.Validation("US", []string{"city"})
		m.KeystrokeRejected("US", "postalCode")
		m.Saved("US")
		m.GatewayCall("update_customer", time.Now(), errors.New("x"))
		m.PublishFailed("subject")
		m.CacheLookup("miss")
	})
}

func TestSentryDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	flush, err := InitSentry(SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	flush()
	assert.False(t, IsEnabled())

	flush, err = InitSentry(SentryConfig{Enabled: true}, logger)
	require.NoError(t, err, "missing DSN disables instead of failing")
	flush()
	assert.False(t, IsEnabled())

	assert.NotPanics(t, func() {
		CaptureErrorFromContext(context.Background(), errors.New("ignored"), nil)
		AddBreadcrumb(context.Background(), "gateway", "ignored", nil)
	})

	called := false
	h := SentryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		URL:     "https://api.example.com/api/users/1/billing-details",
		Data:    `{"fullName":"Ada Lovelace"}`,
		Cookies: "session=abc",
	}}

	out := scrubEvent(event, nil)

	assert.Empty(t, out.Request.Data)
	assert.Empty(t, out.Request.Cookies)
	assert.Equal(t, "https://api.example.com/api/users/1/billing-details", out.Request.URL)
}
