// Package lock provides the Locker implementations used to serialize request
// numbering: a Redis lock for multi-instance deployments and an in-process
// one for a single server.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
)

// New returns a RedisLocker when a client is available, otherwise a LocalLocker
func New(client *redis.Client) appviatico.Locker {
	if client != nil {
		return NewRedisLocker(client)
	}
	return NewLocalLocker()
}

// RedisLocker obtains locks with bsm/redislock. Acquire never blocks: a held
// key returns ErrLockNotObtained and the caller decides how to retry.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker wraps a go-redis client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Acquire obtains key for ttl
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (appviatico.Lock, error) {
	held, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, appviatico.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &redisLock{lock: held}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock that already expired is not an error, the
// numbering critical section is short and the unique index backs it up.
func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("failed to release lock %s: %w", l.lock.Key(), err)
	}
	return nil
}

// LocalLocker is an in-process Locker with the same non-blocking, expiring
// semantics as RedisLocker
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
}

type localEntry struct {
	token     uuid.UUID
	expiresAt time.Time
}

// NewLocalLocker creates an empty in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localEntry), now: time.Now}
}

// Acquire takes key unless a live holder has it
func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (appviatico.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expiresAt) {
		return nil, appviatico.ErrLockNotObtained
	}
	token := uuid.New()
	l.held[key] = localEntry{token: token, expiresAt: now.Add(ttl)}
	return &localLock{locker: l, key: key, token: token}, nil
}

func (l *LocalLocker) release(key string, token uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// after expiry someone else may own the key; only the holder may clear it
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
}

type localLock struct {
	locker *LocalLocker
	key    string
	token  uuid.UUID
}

func (l *localLock) Release(context.Context) error {
	l.locker.release(l.key, l.token)
	return nil
}

var (
	_ appviatico.Locker = (*RedisLocker)(nil)
	_ appviatico.Locker = (*LocalLocker)(nil)
)
