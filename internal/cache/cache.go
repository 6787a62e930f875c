// Package cache is a best-effort read-through cache for analytics results.
// A missing REDIS_URL disables it; redis failures only cost a cache miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"valorant-analytics/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const keyPrefix = "va"

var results = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analytics_cache_results_total",
		Help: "Analytics cache lookups by result",
	},
	[]string{"result"},
)

// Client is the subset of redis commands the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Cache struct {
	client Client
	ttl    time.Duration
	logger zerolog.Logger
}

func New(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, analytics cache disabled")
		return &Cache{logger: logger}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unreachable, continuing without cache hits")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	logger.Info().Str("addr", opts.Addr).Dur("ttl", cfg.CacheTTL).Msg("analytics cache enabled")
	return NewWithClient(rdb, cfg.CacheTTL, logger), nil
}

func NewWithClient(client Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Ping reports redis health. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get decodes the cached value for key into dest and reports whether it hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		results.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		results.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		results.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}

	results.WithLabelValues("hit").Inc()
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache value unencodable")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Remember returns the cached value for key, loading and storing it on a miss.
func Remember[T any](ctx context.Context, c *Cache, key string, load func() T) T {
	return RememberIf(ctx, c, key, func() (T, bool) { return load(), true })
}

// RememberIf is Remember for loaders that can fall back to a placeholder.
// A value loaded with ok=false is returned but never stored.
func RememberIf[T any](ctx context.Context, c *Cache, key string, load func() (T, bool)) T {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached
	}
	value, ok := load()
	if !ok {
		results.WithLabelValues("skipped").Inc()
		return value
	}
	c.Set(ctx, key, value)
	return value
}

func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
