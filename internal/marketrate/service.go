// Package marketrate publishes the current benchmark rate per loan product.
// Reads go through a Redis cache in front of PostgreSQL.
package marketrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"broker_portal_backend/platform/apperr"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "market_rate:"

// Provider returns the current market rate for a product.
type Provider interface {
	Current(ctx context.Context, product string) (Rate, error)
}

// Service caches Store lookups in Redis. A nil Redis client disables caching.
type Service struct {
	store          Store
	redis          *redis.Client
	ttl            time.Duration
	defaultProduct string
	log            *logger.Logger
	now            func() time.Time
}

// NewService creates a market rate service.
func NewService(store Store, rdb *redis.Client, ttl time.Duration, defaultProduct string, log *logger.Logger) *Service {
	return &Service{
		store:          store,
		redis:          rdb,
		ttl:            ttl,
		defaultProduct: defaultProduct,
		log:            log,
		now:            time.Now,
	}
}

var _ Provider = (*Service)(nil)

// ResolveProduct returns product normalised, or the default product when empty.
func (s *Service) ResolveProduct(product string) string {
	product = strings.ToLower(strings.TrimSpace(product))
	if product == "" {
		return s.defaultProduct
	}
	return product
}

// Current returns the latest rate for product.
func (s *Service) Current(ctx context.Context, product string) (Rate, error) {
	product = s.ResolveProduct(product)

	if rate, ok := s.fromCache(ctx, product); ok {
		return rate, nil
	}

	rate, err := s.store.Latest(ctx, product)
	if err != nil {
		return Rate{}, err
	}
	s.toCache(ctx, rate)
	return rate, nil
}

// Publish records a new observation and refreshes the cache.
func (s *Service) Publish(ctx context.Context, product string, value float64, source string) (Rate, error) {
	if value <= 0 || value > 100 {
		return Rate{}, apperr.Validation(fmt.Sprintf("rate must be between 0 and 100, got %.3f", value))
	}

	rate, err := s.store.Insert(ctx, Rate{
		Product:    s.ResolveProduct(product),
		Rate:       value,
		Source:     source,
		ObservedAt: s.now().UTC(),
	})
	if err != nil {
		return Rate{}, err
	}
	s.toCache(ctx, rate)
	return rate, nil
}

func (s *Service) fromCache(ctx context.Context, product string) (Rate, bool) {
	if s.redis == nil {
		return Rate{}, false
	}

	raw, err := s.redis.Get(ctx, cacheKeyPrefix+product).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.MarketRateCache.WithLabelValues("error").Inc()
			s.log.Warn("market rate cache read failed", "product", product, "error", err)
			return Rate{}, false
		}
		metrics.MarketRateCache.WithLabelValues("miss").Inc()
		return Rate{}, false
	}

	var rate Rate
	if err := json.Unmarshal(raw, &rate); err != nil {
		metrics.MarketRateCache.WithLabelValues("error").Inc()
		return Rate{}, false
	}
	metrics.MarketRateCache.WithLabelValues("hit").Inc()
	return rate, true
}

func (s *Service) toCache(ctx context.Context, rate Rate) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKeyPrefix+rate.Product, raw, s.ttl).Err(); err != nil {
		s.log.Warn("market rate cache write failed", "product", rate.Product, "error", err)
	}
}
