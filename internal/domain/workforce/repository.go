package workforce

import (
	"context"

	"github.com/google/uuid"
)

// WorkerRepository defines the interface for worker persistence
type WorkerRepository interface {
	Create(ctx context.Context, worker *Worker) error
	FindByID(ctx context.Context, id uuid.UUID) (*Worker, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Worker, error)
	FindByLegajo(ctx context.Context, legajo string) (*Worker, error)
	ExistsByLegajo(ctx context.Context, legajo string) (bool, error)
	// List returns workers ordered by name
	List(ctx context.Context) ([]*Worker, error)
}

// AreaRepository defines the interface for area persistence
type AreaRepository interface {
	Create(ctx context.Context, area *Area) error
	FindByID(ctx context.Context, id uuid.UUID) (*Area, error)
	FindByName(ctx context.Context, name string) (*Area, error)
	// List returns areas ordered by name
	List(ctx context.Context) ([]*Area, error)
}
