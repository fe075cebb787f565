package rate

import (
	"context"

	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// Repository defines the append-only rate history store
type Repository interface {
	// Append inserts a new history entry
	Append(ctx context.Context, entry *Entry) error

	// List returns the full timeline ordered by effective date
	List(ctx context.Context) (Timeline, error)

	// FindEffectiveAt returns the entry in force on asOf, or NOT_FOUND
	FindEffectiveAt(ctx context.Context, asOf valueobject.Date) (*Entry, error)

	// FindPreviousTo returns the latest entry strictly before d, or NOT_FOUND
	FindPreviousTo(ctx context.Context, d valueobject.Date) (*Entry, error)
}
