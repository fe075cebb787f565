package request

import (
	"context"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// ListFilter narrows request listings
type ListFilter struct {
	shared.Filter
	Status *Status
	AreaID *uuid.UUID
}

// Repository defines the request and version store.
// Every write method is expected to run inside the caller's transaction.
type Repository interface {
	// Create inserts a request with its first version and line items
	Create(ctx context.Context, req *ViaticRequest) error

	// FindByID loads a request with every version and its children
	FindByID(ctx context.Context, id uuid.UUID) (*ViaticRequest, error)

	// List returns requests without versions, newest first
	List(ctx context.Context, filter ListFilter) ([]*ViaticRequest, int64, error)

	// LatestRequestNumber returns the number of the most recently created
	// request, or an empty string when there is none
	LatestRequestNumber(ctx context.Context) (string, error)

	// LatestLoteNumber returns the highest lote number of the year, or ""
	LatestLoteNumber(ctx context.Context, year int) (string, error)

	// FindVersionsOverlapping returns every version of the non-cancelled
	// requests whose range overlaps [from, to], with line items
	FindVersionsOverlapping(ctx context.Context, from, to valueobject.Date) ([]*Version, error)

	// AppendVersion inserts v with its children and moves the request
	// pointer to it. The request row is updated only if it still points to
	// v.VersionNumber-1 at the previous lock version; otherwise
	// VERSION_CONFLICT is returned.
	AppendVersion(ctx context.Context, req *ViaticRequest, v *Version) error

	// SaveState persists status and lock version with a compare-and-swap
	SaveState(ctx context.Context, req *ViaticRequest) error

	// SaveVersionDetails writes the standardization fields of a version
	SaveVersionDetails(ctx context.Context, v *Version) error

	// SaveSignature upserts the signature of its version
	SaveSignature(ctx context.Context, s *Signature) error

	// SavePayment upserts the treasury payment of its version
	SavePayment(ctx context.Context, p *TreasuryPayment) error

	// SaveCorrectionRequest upserts a correction request
	SaveCorrectionRequest(ctx context.Context, c *CorrectionRequest) error

	// FindLineItemByID loads one worker line
	FindLineItemByID(ctx context.Context, id uuid.UUID) (*LineItem, error)
}
