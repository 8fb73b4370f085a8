package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared between API instances
type RedisCache struct {
	client *redis.Client
	prefix string
	stats  Stats
}

// NewRedisCache creates a cache that namespaces every key with prefix
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.miss()
			return false, nil
		}
		c.stats.fail()
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.fail()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.stats.hit()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.fail()
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.stats.fail()
		return fmt.Errorf("cache set error: %w", err)
	}

	c.stats.set()
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.stats.fail()
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Stats returns the current hit/miss counters
func (c *RedisCache) Stats() Stats {
	return c.stats.Snapshot()
}
