package rendition

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the rendition store
type Repository interface {
	// FindByRequestWorker loads the rendition of a line with its legs, or NOT_FOUND
	FindByRequestWorker(ctx context.Context, requestWorkerID uuid.UUID) (*Rendition, error)

	// Save upserts the rendition by line and replaces its legs wholesale
	Save(ctx context.Context, r *Rendition) error
}
