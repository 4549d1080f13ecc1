// Package cache provides the shared Redis client.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"broker_portal_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// ParseRedisURL turns a redis:// or rediss:// URL into client options.
// tlsInsecure skips certificate verification, forcing TLS on if the URL did not.
func ParseRedisURL(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return opt, nil
}

// NewRedis creates a client from configuration and verifies it with a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := ParseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// PingAdapter exposes a Redis client as a health check.
type PingAdapter struct {
	client *redis.Client
}

// NewPingAdapter wraps client for readiness checks.
func NewPingAdapter(client *redis.Client) *PingAdapter {
	return &PingAdapter{client: client}
}

// Ping reports whether Redis answers.
func (a *PingAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
