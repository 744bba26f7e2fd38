// AngelaMos | 2026
// cache.go

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/metrics"
)

// ConfigCache stores resolved Configs as JSON under <prefix>:<code>.
type ConfigCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewConfigCache(client redis.UniversalClient, prefix string, ttl time.Duration) *ConfigCache {
	return &ConfigCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ConfigCache) key(code string) string {
	return c.prefix + ":" + code
}

// Get returns (nil, nil) on a miss.
func (c *ConfigCache) Get(ctx context.Context, code string) (*Config, error) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMiss()
		return nil, nil
	}
	if err != nil {
		metrics.CacheError()
		return nil, fmt.Errorf("tenant cache get: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		metrics.CacheError()
		return nil, fmt.Errorf("tenant cache decode: %w", err)
	}

	metrics.CacheHit()
	return &cfg, nil
}

func (c *ConfigCache) Set(ctx context.Context, code string, cfg *Config) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("tenant cache encode: %w", err)
	}

	if err := c.client.Set(ctx, c.key(code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("tenant cache set: %w", err)
	}
	return nil
}

func (c *ConfigCache) Invalidate(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		return fmt.Errorf("tenant cache invalidate: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached tenant. Settings are global, so any
// setting write goes through here.
func (c *ConfigCache) InvalidateAll(ctx context.Context) error {
	if _, err := core.DeleteByPrefix(ctx, c.client, c.prefix+":"); err != nil {
		return fmt.Errorf("tenant cache invalidate all: %w", err)
	}
	return nil
}
