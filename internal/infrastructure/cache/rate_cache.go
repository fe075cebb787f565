package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/rate"
)

// NewRateCache picks the Redis cache when a client is available, otherwise
// the in-process one. Every instance shares the Redis copy, so an
// invalidation after SetRate is seen cluster wide.
func NewRateCache(client *redis.Client, ttl time.Duration) appviatico.RateCache {
	if client != nil {
		return NewRedisRateCache(client, "", ttl)
	}
	return NewInMemoryRateCache(ttl)
}

// InMemoryRateCache holds the rate timeline in process memory with a TTL
type InMemoryRateCache struct {
	mu        sync.RWMutex
	timeline  rate.Timeline
	loaded    bool
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemoryRateCache creates an empty cache. A non-positive ttl keeps the
// timeline until the next invalidation.
func NewInMemoryRateCache(ttl time.Duration) *InMemoryRateCache {
	return &InMemoryRateCache{ttl: ttl, now: time.Now}
}

// GetTimeline returns a copy of the cached timeline and whether it was present
func (c *InMemoryRateCache) GetTimeline(_ context.Context) (rate.Timeline, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	out := make(rate.Timeline, len(c.timeline))
	copy(out, c.timeline)
	return out, true, nil
}

// SetTimeline replaces the cached timeline
func (c *InMemoryRateCache) SetTimeline(_ context.Context, timeline rate.Timeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeline = make(rate.Timeline, len(timeline))
	copy(c.timeline, timeline)
	c.loaded = true
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached timeline
func (c *InMemoryRateCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeline = nil
	c.loaded = false
	return nil
}

var _ appviatico.RateCache = (*InMemoryRateCache)(nil)
