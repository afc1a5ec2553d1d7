package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Stripe.Enabled())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("PORT", "8080")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, ,https://app.example.com")
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_abc")
	t.Setenv("STRIPE_MAX_RETRIES", "4")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env, "unknown env falls back to prod")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint16(8080), cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://shop.example.com", "https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.Stripe.MaxRetries)
	assert.True(t, cfg.Stripe.Enabled())
}

func TestNewConfig_ProdRejectsTestStripeKey(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "live key")
}

func TestGetEnvParsed(t *testing.T) {
	t.Setenv("TEST_DURATION", "not-a-duration")
	assert.Equal(t, time.Second, getEnvParsed("TEST_DURATION", time.Second, time.ParseDuration))

	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvParsed("TEST_DURATION", time.Second, time.ParseDuration))

	t.Setenv("TEST_PORT", "70000")
	assert.Equal(t, uint16(3000), getEnvParsed("TEST_PORT", uint16(3000), parseUint16), "out of range")

	t.Setenv("TEST_FLAG", "yes")
	assert.True(t, getEnvParsed("TEST_FLAG", false, parseBool))
}
