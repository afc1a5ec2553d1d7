// Package cache provides a Redis read-through cache in front of the billing
// details repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/telemetry"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 15 * time.Minute

const keyPrefix = "billing_details:"

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// BillingDetails decorates a repository with a read-through cache. Redis
// failures never fail a call; they are logged and the backing repository
// answers instead.
type BillingDetails struct {
	next    domain.BillingDetailsRepository
	client  Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *telemetry.BusinessMetrics
}

var _ domain.BillingDetailsRepository = (*BillingDetails)(nil)

// NewBillingDetails wraps next. metrics may be nil.
func NewBillingDetails(next domain.BillingDetailsRepository, client Client, ttl time.Duration, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *BillingDetails {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingDetails{
		next:    next,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// Key returns the cache key for a user's billing details.
func Key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func (c *BillingDetails) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.BillingDetails, error) {
	key := Key(userID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var d domain.BillingDetails
		jsonErr := json.Unmarshal(raw, &d)
		if jsonErr == nil {
			c.metrics.CacheLookup("hit")
			return &d, nil
		}
		c.logger.Warn("discarding unreadable cache entry", "key", key, "error", jsonErr)
		c.delete(ctx, key)
		c.metrics.CacheLookup("miss")
	case errors.Is(err, redis.Nil):
		c.metrics.CacheLookup("miss")
	default:
		c.metrics.CacheLookup("error")
		c.logger.Warn("billing details cache read failed", "key", key, "error", err)
	}

	d, err := c.next.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, d)
	return d, nil
}

// Upsert writes through to the repository and refreshes the cached copy.
func (c *BillingDetails) Upsert(ctx context.Context, details *domain.BillingDetails) (*domain.BillingDetails, error) {
	saved, err := c.next.Upsert(ctx, details)
	if err != nil {
		c.delete(ctx, Key(details.UserID))
		return nil, err
	}
	c.store(ctx, saved)
	return saved, nil
}

// SetGatewayCustomer updates the repository and evicts the cached copy.
func (c *BillingDetails) SetGatewayCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	err := c.next.SetGatewayCustomer(ctx, userID, customerID)
	c.delete(ctx, Key(userID))
	return err
}

func (c *BillingDetails) store(ctx context.Context, d *domain.BillingDetails) {
	key := Key(d.UserID)
	payload, err := json.Marshal(d)
	if err != nil {
		c.logger.Warn("failed to encode billing details for cache", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("billing details cache write failed", "key", key, "error", err)
	}
}

func (c *BillingDetails) delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("billing details cache evict failed", "key", key, "error", err)
	}
}
