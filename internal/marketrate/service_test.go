package marketrate

import (
	"context"
	"sync"
	"testing"
	"time"

	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	rates   map[string]Rate
	lookups int
}

func newMemoryStore(rates ...Rate) *memoryStore {
	s := &memoryStore{rates: make(map[string]Rate)}
	for _, r := range rates {
		s.rates[r.Product] = r
	}
	return s
}

func (s *memoryStore) Latest(_ context.Context, product string) (Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	r, ok := s.rates[product]
	if !ok {
		return Rate{}, apperr.NotFound("no market rate published for " + product)
	}
	return r, nil
}

func (s *memoryStore) Insert(_ context.Context, rate Rate) (Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rate.Product] = rate
	return rate, nil
}

func newTestService(t *testing.T, store Store) (*Service, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(store, rdb, 15*time.Minute, "30yr_fixed", logger.Nop()), srv
}

func TestCurrentReadsThroughCache(t *testing.T) {
	store := newMemoryStore(Rate{Product: "30yr_fixed", Rate: 6.82, Source: "freddie"})
	svc, srv := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.Current(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 6.82, first.Rate)

	second, err := svc.Current(ctx, " 30YR_FIXED ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.lookups)

	assert.True(t, srv.Exists("market_rate:30yr_fixed"))
	assert.Equal(t, 15*time.Minute, srv.TTL("market_rate:30yr_fixed"))

	srv.FastForward(16 * time.Minute)
	_, err = svc.Current(ctx, "30yr_fixed")
	require.NoError(t, err)
	assert.Equal(t, 2, store.lookups)
}

func TestCurrentUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t, newMemoryStore())
	_, err := svc.Current(context.Background(), "5yr_arm")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCurrentWithoutRedis(t *testing.T) {
	store := newMemoryStore(Rate{Product: "15yr_fixed", Rate: 5.9})
	svc := NewService(store, nil, time.Minute, "30yr_fixed", logger.Nop())

	rate, err := svc.Current(context.Background(), "15yr_fixed")
	require.NoError(t, err)
	assert.Equal(t, 5.9, rate.Rate)
}

func TestCurrentFallsBackWhenRedisIsDown(t *testing.T) {
	store := newMemoryStore(Rate{Product: "30yr_fixed", Rate: 6.5})
	svc, srv := newTestService(t, store)
	srv.Close()

	rate, err := svc.Current(context.Background(), "30yr_fixed")
	require.NoError(t, err)
	assert.Equal(t, 6.5, rate.Rate)
}

func TestPublishRefreshesCache(t *testing.T) {
	store := newMemoryStore(Rate{Product: "30yr_fixed", Rate: 6.9})
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Current(ctx, "30yr_fixed")
	require.NoError(t, err)

	published, err := svc.Publish(ctx, "30yr_fixed", 6.4, "manual")
	require.NoError(t, err)
	assert.Equal(t, "manual", published.Source)

	current, err := svc.Current(ctx, "30yr_fixed")
	require.NoError(t, err)
	assert.Equal(t, 6.4, current.Rate)
	assert.Equal(t, 1, store.lookups)
}

func TestPublishRejectsOutOfRangeRates(t *testing.T) {
	svc, _ := newTestService(t, newMemoryStore())
	_, err := svc.Publish(context.Background(), "30yr_fixed", 0, "manual")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
