// Package cache provides TTL caches for catalog read paths.
package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Cache stores JSON-encoded values under string keys until their TTL expires
type Cache interface {
	// Get decodes the value stored under key into dest. The boolean is false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Stats tracks cache statistics
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Sets   uint64 `json:"sets"`
	Errors uint64 `json:"errors"`
}

func (s *Stats) hit()  { atomic.AddUint64(&s.Hits, 1) }
func (s *Stats) miss() { atomic.AddUint64(&s.Misses, 1) }
func (s *Stats) set()  { atomic.AddUint64(&s.Sets, 1) }
func (s *Stats) fail() { atomic.AddUint64(&s.Errors, 1) }

// Snapshot returns a copy of the counters safe to read concurrently
func (s *Stats) Snapshot() Stats {
	return Stats{
		Hits:   atomic.LoadUint64(&s.Hits),
		Misses: atomic.LoadUint64(&s.Misses),
		Sets:   atomic.LoadUint64(&s.Sets),
		Errors: atomic.LoadUint64(&s.Errors),
	}
}
