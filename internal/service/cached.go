package service

import (
	"context"
	"time"

	"food-catalog/internal/cache"
)

// CacheTTLs holds how long each cached read path may serve stale data
type CacheTTLs struct {
	Categories time.Duration
	Products   time.Duration
	Featured   time.Duration
	Statistics time.Duration
}

// DefaultCacheTTLs mirrors the catalog's freshness requirements
func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Categories: 15 * time.Minute,
		Products:   10 * time.Minute,
		Featured:   30 * time.Minute,
		Statistics: time.Hour,
	}
}

// cachedRead serves key from c when present, otherwise loads and stores it.
// Cache failures degrade to a direct load.
func cachedRead[T any](ctx context.Context, c cache.Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if c != nil && ttl > 0 {
		if found, err := c.Get(ctx, key, &out); err == nil && found {
			return out, nil
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if c != nil && ttl > 0 {
		_ = c.Set(ctx, key, out, ttl)
	}
	return out, nil
}
