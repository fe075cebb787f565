package cache

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func testTimeline(t *testing.T) rate.Timeline {
	t.Helper()
	jan, err := rate.NewEntry(valueobject.MustParseDate("2026-01-01"), decimal.NewFromInt(25000), "", uuid.New())
	require.NoError(t, err)
	mar, err := rate.NewEntry(valueobject.MustParseDate("2026-03-01"), decimal.RequireFromString("30000.50"), "paritaria", uuid.New())
	require.NoError(t, err)
	return rate.NewTimeline([]rate.Entry{*mar, *jan})
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// closedAddr returns the address of a Redis server that has been shut down
func closedAddr(t *testing.T) string {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()
	return addr
}

func TestInMemoryRateCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewInMemoryRateCache(time.Minute)
	c.now = func() time.Time { return now }

	t.Run("empty cache misses", func(t *testing.T) {
		_, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit returns a copy", func(t *testing.T) {
		require.NoError(t, c.SetTimeline(ctx, testTimeline(t)))

		got, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, got, 2)
		got[0].Note = "mutated"

		again, _, _ := c.GetTimeline(ctx)
		assert.NotEqual(t, "mutated", again[0].Note)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		now = now.Add(time.Minute)
		_, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops the timeline", func(t *testing.T) {
		require.NoError(t, c.SetTimeline(ctx, testTimeline(t)))
		require.NoError(t, c.Invalidate(ctx))
		_, ok, _ := c.GetTimeline(ctx)
		assert.False(t, ok)
	})

	t.Run("empty timeline is still a hit", func(t *testing.T) {
		require.NoError(t, c.SetTimeline(ctx, nil))
		got, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, got)
	})
}

func TestRedisRateCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	c := NewRedisRateCache(client, "", time.Minute)

	t.Run("missing key misses", func(t *testing.T) {
		_, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round trip keeps dates and amounts", func(t *testing.T) {
		want := testTimeline(t)
		require.NoError(t, c.SetTimeline(ctx, want))
		assert.Equal(t, time.Minute, mr.TTL(DefaultRateTimelineKey))

		got, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, got, 2)
		assert.Equal(t, "2026-01-01", got[0].EffectiveFrom.String())
		assert.True(t, want[1].Amount.Equal(got[1].Amount))
		assert.Equal(t, want[1].ID, got[1].ID)

		entry, found := got.EffectiveAt(valueobject.MustParseDate("2026-03-15"))
		require.True(t, found)
		assert.Equal(t, "paritaria", entry.Note)
	})

	t.Run("expired key misses", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate deletes the key", func(t *testing.T) {
		require.NoError(t, c.SetTimeline(ctx, testTimeline(t)))
		require.NoError(t, c.Invalidate(ctx))
		assert.False(t, mr.Exists(DefaultRateTimelineKey))
	})

	t.Run("unreadable payload is a miss", func(t *testing.T) {
		require.NoError(t, mr.Set(DefaultRateTimelineKey, "{not json"))
		_, ok, err := c.GetTimeline(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("connection failure surfaces", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: closedAddr(t)})
		defer down.Close()
		broken := NewRedisRateCache(down, "", time.Minute)

		_, _, err := broken.GetTimeline(ctx)
		assert.Error(t, err)
		assert.Error(t, broken.Invalidate(ctx))
	})
}

func TestNewRateCache(t *testing.T) {
	_, client := newMiniredis(t)
	assert.IsType(t, &RedisRateCache{}, NewRateCache(client, time.Minute))
	assert.IsType(t, &InMemoryRateCache{}, NewRateCache(nil, time.Minute))
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled returns no client", func(t *testing.T) {
		client, err := NewRedisClient(ctx, config.RedisConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		client, err := NewRedisClient(ctx, config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NoError(t, client.Close())
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, rawPort, err := net.SplitHostPort(closedAddr(t))
		require.NoError(t, err)
		port, _ := strconv.Atoi(rawPort)

		_, err = NewRedisClient(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port}, zap.NewNop())
		assert.Error(t, err)
	})
}
