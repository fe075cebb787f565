package rate

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// Entry is one immutable row of the daily-allowance history.
// A new rate always appends an entry; past entries are never edited.
type Entry struct {
	shared.BaseEntity
	EffectiveFrom valueobject.Date
	Amount        decimal.Decimal
	Note          string
	CreatedBy     uuid.UUID
}

// NewEntry creates a history entry, rejecting non-positive amounts
func NewEntry(effectiveFrom valueobject.Date, amount decimal.Decimal, note string, createdBy uuid.UUID) (*Entry, error) {
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Effective date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Amount must be greater than zero")
	}
	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		EffectiveFrom: effectiveFrom,
		Amount:        amount,
		Note:          strings.TrimSpace(note),
		CreatedBy:     createdBy,
	}, nil
}

// Timeline is the rate history ordered by effective date
type Timeline []Entry

// NewTimeline copies and sorts entries by effective date, then creation time
func NewTimeline(entries []Entry) Timeline {
	t := make(Timeline, len(entries))
	copy(t, entries)
	sort.SliceStable(t, func(i, j int) bool {
		if !t[i].EffectiveFrom.Equal(t[j].EffectiveFrom) {
			return t[i].EffectiveFrom.Before(t[j].EffectiveFrom)
		}
		return t[i].CreatedAt.Before(t[j].CreatedAt)
	})
	return t
}

// EffectiveAt returns the entry with the latest EffectiveFrom <= asOf.
// When several entries share that date the latest created wins.
func (t Timeline) EffectiveAt(asOf valueobject.Date) (*Entry, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if !t[i].EffectiveFrom.After(asOf) {
			e := t[i]
			return &e, true
		}
	}
	return nil, false
}

// PreviousTo returns the entry with the latest EffectiveFrom strictly before d
func (t Timeline) PreviousTo(d valueobject.Date) (*Entry, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].EffectiveFrom.Before(d) {
			e := t[i]
			return &e, true
		}
	}
	return nil, false
}

// Change describes a rate transition that may warrant a retroactive batch
type Change struct {
	Entry     *Entry
	Previous  *Entry
	OldAmount decimal.Decimal
	NewAmount decimal.Decimal
}

// NewChange pairs the appended entry with the one it supersedes
func NewChange(entry *Entry, previous *Entry) Change {
	c := Change{Entry: entry, Previous: previous, NewAmount: entry.Amount}
	if previous != nil {
		c.OldAmount = previous.Amount
	}
	return c
}

// IsRetroactive is true when a previous rate exists and the amount changed
func (c Change) IsRetroactive() bool {
	return c.Previous != nil && !c.OldAmount.Equal(c.NewAmount)
}

// Diff returns newAmount - oldAmount
func (c Change) Diff() decimal.Decimal {
	return c.NewAmount.Sub(c.OldAmount)
}
