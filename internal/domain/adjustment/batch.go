package adjustment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// Status is the lifecycle state of a batch and its items
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusApplied Status = "APPLIED"
)

// Batch is a retroactive back-pay proposal produced by a rate change.
// It stays advisory until explicitly applied.
type Batch struct {
	shared.BaseEntity
	PeriodMonth   string // YYYY-MM
	EffectiveFrom valueobject.Date
	OldAmount     decimal.Decimal
	NewAmount     decimal.Decimal
	RateEntryID   uuid.UUID
	Status        Status
	CreatedBy     uuid.UUID
	AppliedAt     *time.Time
	AppliedBy     *uuid.UUID
	Items         []*Item
}

// Item is the aggregated back-pay of one worker
type Item struct {
	shared.BaseEntity
	BatchID      uuid.UUID
	WorkerID     uuid.UUID
	DaysAffected decimal.Decimal
	AmountDiff   decimal.Decimal // signed, newAmount − oldAmount per scaled day
	Status       Status
}

// IsDraft reports whether the batch can still be applied
func (b *Batch) IsDraft() bool {
	return b.Status == StatusDraft
}

// TotalDiff sums the signed amount of every item
func (b *Batch) TotalDiff() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(it.AmountDiff)
	}
	return total
}

// Apply flips the batch and its items to APPLIED
func (b *Batch) Apply(by uuid.UUID, at time.Time) error {
	if !b.IsDraft() {
		return shared.NewDomainError(shared.CodeAlreadyApplied,
			fmt.Sprintf("Batch %s is already %s", b.ID, b.Status))
	}
	for _, it := range b.Items {
		it.Status = StatusApplied
		it.UpdatedAt = at
	}
	b.Status = StatusApplied
	b.AppliedAt = &at
	b.AppliedBy = &by
	b.UpdatedAt = at
	return nil
}
