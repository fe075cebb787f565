package viatico

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/rate"
)

// RateCache keeps the rate timeline close to the readers.
// Implementations must be safe for concurrent use.
type RateCache interface {
	GetTimeline(ctx context.Context) (rate.Timeline, bool, error)
	SetTimeline(ctx context.Context, timeline rate.Timeline) error
	Invalidate(ctx context.Context) error
}

// ErrLockNotObtained is returned by a Locker when the lock is held elsewhere
var ErrLockNotObtained = errors.New("lock not obtained")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes critical sections such as request numbering across
// processes
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// RequestNumberLockKey guards request number generation
const RequestNumberLockKey = "viaticos:lock:request-number"

// Settings holds the business defaults read from configuration
type Settings struct {
	DefaultDailyAmount   decimal.Decimal
	DefaultArea          string
	RateCacheTTL         time.Duration
	RequestNumberLockTTL time.Duration
	// LockWaitTimeout bounds how long creation waits for the numbering lock
	LockWaitTimeout time.Duration
}

// DefaultSettings returns the built-in business defaults
func DefaultSettings() Settings {
	return Settings{
		DefaultDailyAmount:   decimal.NewFromInt(25000),
		DefaultArea:          "Santiago del Estero",
		RateCacheTTL:         10 * time.Minute,
		RequestNumberLockTTL: 5 * time.Second,
		LockWaitTimeout:      3 * time.Second,
	}
}
