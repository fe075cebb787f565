package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// Version is one immutable snapshot of a request. Corrections fork a new
// version; only the standardization fields are written in place.
type Version struct {
	shared.BaseEntity
	RequestID          uuid.UUID
	VersionNumber      int
	StartDate          valueobject.Date
	EndDate            valueobject.Date // inclusive
	PlannedPaymentDate valueobject.Date // zero when unset
	LoteNumber         string
	Notes              string
	Plan               DayPlan
	CreatedBy          uuid.UUID
	Workers            []*LineItem
	DayConcepts        []*DayConcept
	Signature          *Signature
	Payment            *TreasuryPayment
	Corrections        []*CorrectionRequest
}

// NewVersion creates a version over an inclusive date range
func NewVersion(start, end valueobject.Date, notes string, plan DayPlan, createdBy uuid.UUID) (*Version, error) {
	if _, err := valueobject.NewDateRange(start, end); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	plan.SchemaVersion = DayPlanSchemaVersion
	return &Version{
		BaseEntity: shared.NewBaseEntity(),
		StartDate:  start,
		EndDate:    end,
		Notes:      strings.TrimSpace(notes),
		Plan:       plan,
		CreatedBy:  createdBy,
	}, nil
}

// Range returns the covered dates
func (v *Version) Range() valueobject.DateRange {
	return valueobject.DateRange{Start: v.StartDate, End: v.EndDate}
}

// RangeDays returns the inclusive day count, at least one
func (v *Version) RangeDays() int {
	return v.Range().Days()
}

// AddLine appends a worker line item
func (v *Version) AddLine(workerID uuid.UUID, days, dailyAmount decimal.Decimal) (*LineItem, error) {
	item, err := NewLineItem(workerID, days, dailyAmount)
	if err != nil {
		return nil, err
	}
	item.VersionID = v.ID
	v.Workers = append(v.Workers, item)
	return item, nil
}

// AddConcept appends a descriptive concept for one date
func (v *Version) AddConcept(date valueobject.Date, text string) {
	v.DayConcepts = append(v.DayConcepts, &DayConcept{
		ID:          uuid.New(),
		VersionID:   v.ID,
		Date:        date,
		ConceptText: text,
	})
}

// TotalNet sums the net amount of all line items
func (v *Version) TotalNet() decimal.Decimal {
	total := decimal.Zero
	for _, w := range v.Workers {
		total = total.Add(w.NetAmount)
	}
	return total
}

// OpenCorrections returns correction requests still OPEN, newest first
func (v *Version) OpenCorrections() []*CorrectionRequest {
	var out []*CorrectionRequest
	for i := len(v.Corrections) - 1; i >= 0; i-- {
		if v.Corrections[i].Status == CorrectionOpen {
			out = append(out, v.Corrections[i])
		}
	}
	return out
}

// fork copies the version verbatim into the next version number.
// Line amounts are kept as they are; the daily amount stays frozen.
func (v *Version) fork(createdBy uuid.UUID) *Version {
	next := &Version{
		BaseEntity:         shared.NewBaseEntity(),
		RequestID:          v.RequestID,
		VersionNumber:      v.VersionNumber + 1,
		StartDate:          v.StartDate,
		EndDate:            v.EndDate,
		PlannedPaymentDate: v.PlannedPaymentDate,
		LoteNumber:         v.LoteNumber,
		Notes:              v.Notes,
		Plan:               v.Plan,
		CreatedBy:          createdBy,
	}
	for _, w := range v.Workers {
		next.Workers = append(next.Workers, w.CopyFor(next.ID))
	}
	for _, c := range v.DayConcepts {
		next.DayConcepts = append(next.DayConcepts, &DayConcept{
			ID:          uuid.New(),
			VersionID:   next.ID,
			Date:        c.Date,
			ConceptText: c.ConceptText,
		})
	}
	return next
}

// LineItem is the allowance of one worker within a version
type LineItem struct {
	shared.BaseEntity
	VersionID            uuid.UUID
	WorkerID             uuid.UUID
	DaysCount            decimal.Decimal
	DailyAmount          decimal.Decimal // frozen at creation
	GrossAmount          decimal.Decimal
	BalanceAppliedAmount decimal.Decimal
	NetAmount            decimal.Decimal
}

// NewLineItem creates a line with gross = daily x days and no balance applied
func NewLineItem(workerID uuid.UUID, days, dailyAmount decimal.Decimal) (*LineItem, error) {
	if days.IsNegative() || !valueobject.IsHalfStep(days) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Days must be a non-negative multiple of 0.5")
	}
	if !dailyAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Daily amount must be greater than zero")
	}
	item := &LineItem{
		BaseEntity:           shared.NewBaseEntity(),
		WorkerID:             workerID,
		DaysCount:            days,
		DailyAmount:          dailyAmount,
		BalanceAppliedAmount: decimal.Zero,
	}
	item.recompute()
	return item, nil
}

// ApplyBalance sets the amount discounted from the gross and recomputes net
func (l *LineItem) ApplyBalance(amount decimal.Decimal) {
	l.BalanceAppliedAmount = amount
	l.recompute()
}

func (l *LineItem) recompute() {
	l.GrossAmount = l.DailyAmount.Mul(l.DaysCount)
	l.NetAmount = l.GrossAmount.Sub(l.BalanceAppliedAmount)
}

// CopyFor duplicates the line for another version, amounts unchanged
func (l *LineItem) CopyFor(versionID uuid.UUID) *LineItem {
	return &LineItem{
		BaseEntity:           shared.NewBaseEntity(),
		VersionID:            versionID,
		WorkerID:             l.WorkerID,
		DaysCount:            l.DaysCount,
		DailyAmount:          l.DailyAmount,
		GrossAmount:          l.GrossAmount,
		BalanceAppliedAmount: l.BalanceAppliedAmount,
		NetAmount:            l.NetAmount,
	}
}

// DayConcept describes the work done on one date. Not financial.
type DayConcept struct {
	ID          uuid.UUID
	VersionID   uuid.UUID
	Date        valueobject.Date
	ConceptText string
}

// SignatureMethodPIN is the only signing method supported
const SignatureMethodPIN = "PIN"

// Signature is the supervisor sign-off of a version
type Signature struct {
	ID        uuid.UUID
	VersionID uuid.UUID
	SignedBy  uuid.UUID
	SignedAt  time.Time
	Method    string
	DocHash   string
}

// TreasuryPayment records the payment of a version
type TreasuryPayment struct {
	ID               uuid.UUID
	VersionID        uuid.UUID
	PaidAt           time.Time
	PaymentReference string
	Notes            string
	CreatedBy        uuid.UUID
}

// CorrectionStatus is the state of a treasury correction request
type CorrectionStatus string

const (
	CorrectionOpen     CorrectionStatus = "OPEN"
	CorrectionResolved CorrectionStatus = "RESOLVED"
)

// CorrectionRequest is raised by treasury when a version cannot be paid
type CorrectionRequest struct {
	ID                   uuid.UUID
	VersionID            uuid.UUID
	Reason               string
	SuggestedPaymentDate valueobject.Date
	Status               CorrectionStatus
	CreatedBy            uuid.UUID
	CreatedAt            time.Time
	ResolvedAt           *time.Time
}

// Resolve closes the correction request
func (c *CorrectionRequest) Resolve(at time.Time) {
	c.Status = CorrectionResolved
	c.ResolvedAt = &at
}
