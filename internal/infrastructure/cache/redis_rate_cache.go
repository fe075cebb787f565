package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/rate"
)

// DefaultRateTimelineKey is where the serialized timeline lives
const DefaultRateTimelineKey = "viaticos:rates:timeline"

// RedisRateCache stores the rate timeline as one JSON value in Redis
type RedisRateCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisRateCache wraps an existing client. An empty key uses
// DefaultRateTimelineKey; a non-positive ttl stores without expiry.
func NewRedisRateCache(client *redis.Client, key string, ttl time.Duration) *RedisRateCache {
	if key == "" {
		key = DefaultRateTimelineKey
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisRateCache{client: client, key: key, ttl: ttl}
}

// GetTimeline reads the timeline; a missing key is a miss, not an error
func (c *RedisRateCache) GetTimeline(ctx context.Context) (rate.Timeline, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rate timeline: %w", err)
	}

	var timeline rate.Timeline
	if err := json.Unmarshal(raw, &timeline); err != nil {
		// a payload from an older layout is treated as a miss and overwritten on the next load
		return nil, false, nil
	}
	return timeline, true, nil
}

// SetTimeline writes the timeline with the configured TTL
func (c *RedisRateCache) SetTimeline(ctx context.Context, timeline rate.Timeline) error {
	if timeline == nil {
		timeline = rate.Timeline{}
	}
	raw, err := json.Marshal(timeline)
	if err != nil {
		return fmt.Errorf("failed to encode rate timeline: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate timeline: %w", err)
	}
	return nil
}

// Invalidate deletes the cached timeline
func (c *RedisRateCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rate timeline: %w", err)
	}
	return nil
}

var _ appviatico.RateCache = (*RedisRateCache)(nil)
