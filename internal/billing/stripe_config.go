package billing

import (
	"fmt"
	"strings"
	"time"
)

// StripeConfig contains configuration for the Stripe provider.
type StripeConfig struct {
	// APIKey is the Stripe secret key (sk_test_... or sk_live_...)
	APIKey string

	// MaxRetries is the maximum number of retries for transient failures.
	// Default: 2
	MaxRetries int

	// TimeoutSeconds is the HTTP timeout for Stripe API calls in seconds.
	// Default: 10
	TimeoutSeconds int

	// BackendURL overrides the Stripe API base URL. Empty means the
	// production API.
	BackendURL string
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidAPIKey
	}
	if !strings.HasPrefix(c.APIKey, "sk_") && !strings.HasPrefix(c.APIKey, "rk_") {
		return fmt.Errorf("%w: expected a secret or restricted key", ErrInvalidAPIKey)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("stripe: max retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "sk_test_") || strings.HasPrefix(c.APIKey, "rk_test_")
}

func (c *StripeConfig) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *StripeConfig) maxRetries() int64 {
	if c.MaxRetries == 0 {
		return 2
	}
	return int64(c.MaxRetries)
}
