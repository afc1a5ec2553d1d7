package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failAll error
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failAll != nil {
		return redis.NewStringResult("", f.failAll)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failAll != nil {
		return redis.NewStatusResult("", f.failAll)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failAll != nil {
		return redis.NewIntResult(0, f.failAll)
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type fakeRepo struct {
	records map[uuid.UUID]*domain.BillingDetails
	gets    int
	err     error
}

func (r *fakeRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.BillingDetails, error) {
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.records[userID]
	if !ok {
		return nil, domain.NotFound("billing_details.get", "billing details", userID.String())
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, d *domain.BillingDetails) (*domain.BillingDetails, error) {
	if r.err != nil {
		return nil, r.err
	}
	cp := *d
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.UpdatedAt = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	r.records[d.UserID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) SetGatewayCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	if r.err != nil {
		return r.err
	}
	r.records[userID].GatewayCustomerID = customerID
	return nil
}

func details(userID uuid.UUID) *domain.BillingDetails {
	return &domain.BillingDetails{
		ID:     uuid.New(),
		UserID: userID,
		Address: address.Address{
			FullName:     "Ada Lovelace",
			Country:      "CA",
			AddressLine1: "290 Bremner Blvd",
			City:         "Toronto",
			State:        "ON",
			PostalCode:   "M5V 3L9",
		},
		CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestCache(repo *fakeRepo, rdb *fakeRedis) (*BillingDetails, *telemetry.BusinessMetrics) {
	m := telemetry.NewBusinessMetrics(prometheus.NewRegistry(), "test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBillingDetails(repo, rdb, time.Minute, logger, m), m
}

func TestBillingDetails_ReadThrough(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	c, m := newTestCache(repo, rdb)
	ctx := context.Background()

	first, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)
	second, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets, "second read served from redis")
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, rdb.ttls[Key(userID)])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestBillingDetails_NotFoundIsNotCached(t *testing.T) {
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{}}
	rdb := newFakeRedis()
	c, _ := newTestCache(repo, rdb)

	_, err := c.GetByUser(context.Background(), uuid.New())

	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
	assert.Empty(t, rdb.data)
}

func TestBillingDetails_RedisDownFallsBack(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	rdb.failAll = errors.New("dial tcp: connection refused")
	c, m := newTestCache(repo, rdb)

	got, err := c.GetByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "M5V 3L9", got.PostalCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("error")))

	saved, err := c.Upsert(context.Background(), details(userID))
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestBillingDetails_CorruptEntryIsDiscarded(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	rdb.data[Key(userID)] = "{not json"
	c, _ := newTestCache(repo, rdb)

	got, err := c.GetByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "Toronto", got.City)
	assert.Contains(t, rdb.deleted, Key(userID))
	assert.Equal(t, 1, repo.gets)
}

func TestBillingDetails_UpsertRefreshesEntry(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	c, _ := newTestCache(repo, rdb)
	ctx := context.Background()

	_, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)

	updated := details(userID)
	updated.City = "Ottawa"
	updated.PostalCode = "K1A 0B1"
	_, err = c.Upsert(ctx, updated)
	require.NoError(t, err)

	got, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ottawa", got.City)
	assert.Equal(t, 1, repo.gets, "served from the refreshed entry")
}

func TestBillingDetails_UpsertFailureEvicts(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	c, _ := newTestCache(repo, rdb)
	ctx := context.Background()

	_, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)

	repo.err = domain.Internal(errors.New("disk full"), "billing_details.upsert", "failed to save billing details")
	_, err = c.Upsert(ctx, details(userID))

	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
	assert.NotContains(t, rdb.data, Key(userID))
}

func TestBillingDetails_SetGatewayCustomerEvicts(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{records: map[uuid.UUID]*domain.BillingDetails{userID: details(userID)}}
	rdb := newFakeRedis()
	c, _ := newTestCache(repo, rdb)
	ctx := context.Background()

	_, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, c.SetGatewayCustomer(ctx, userID, "cus_42"))
	got, err := c.GetByUser(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, "cus_42", got.GatewayCustomerID)
	assert.Equal(t, 2, repo.gets)
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Equal(t, "billing_details:7c9e6679-7425-40de-944b-e07fc1f90ae7", Key(id))
}
