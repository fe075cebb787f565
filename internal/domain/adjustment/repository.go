package adjustment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the adjustment batch store
type Repository interface {
	// Create inserts a batch with its items
	Create(ctx context.Context, batch *Batch) error

	// FindByID loads a batch with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate loads a batch holding a row lock until commit
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)

	// List returns batches newest first, optionally filtered by status
	List(ctx context.Context, status *Status) ([]*Batch, error)

	// MarkApplied flips a DRAFT batch and its items to APPLIED.
	// ALREADY_APPLIED is returned when the batch is no longer DRAFT.
	MarkApplied(ctx context.Context, batch *Batch) error
}
