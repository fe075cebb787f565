package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the worker balance ledger store
type Repository interface {
	// FindByKeyForUpdate loads the entry of a key holding a row lock, or NOT_FOUND
	FindByKeyForUpdate(ctx context.Context, key Key) (*Entry, error)

	// Upsert writes the entry for its key, updating in place when one exists.
	// A concurrent insert of the same key is resolved by re-reading and updating.
	Upsert(ctx context.Context, entry *Entry) (*Entry, error)

	// DeleteByKey removes the entry of a key, reporting whether one existed
	DeleteByKey(ctx context.Context, key Key) (bool, error)

	// ListByWorker returns a worker's entries, oldest first
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*Entry, error)

	// Balance returns Σcredits − Σdebits of a worker
	Balance(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
}
