package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Cache used when Redis is not configured.
// Values are stored encoded so callers never share mutable state.
type MemoryCache struct {
	store *gocache.Cache
	stats Stats
}

// NewMemoryCache creates an in-memory cache that sweeps expired entries every cleanupInterval
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, found := c.store.Get(key)
	if !found {
		c.stats.miss()
		return false, nil
	}

	data, ok := raw.([]byte)
	if !ok {
		c.stats.fail()
		return false, fmt.Errorf("cache entry %q has unexpected type %T", key, raw)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.fail()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.stats.hit()
	return true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.fail()
		return fmt.Errorf("cache marshal error: %w", err)
	}

	c.store.Set(key, data, ttl)
	c.stats.set()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Flush() {
	c.store.Flush()
}

func (c *MemoryCache) Stats() Stats {
	return c.stats.Snapshot()
}
