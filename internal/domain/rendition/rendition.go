package rendition

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// Rendition is the expense report of one worker line, 1:1 with the line
type Rendition struct {
	shared.BaseEntity
	RequestWorkerID  uuid.UUID
	RequestVersionID uuid.UUID
	WorkerID         uuid.UUID
	Reason           string
	VehiclePlate     string
	AttachmentURL    string // opaque, never fetched
	Notes            string
	ConsumedViaticos *decimal.Decimal // nil until rendered
	CreatedBy        uuid.UUID
	Legs             []Leg
}

// Leg is one trip segment. Legs carry no identity across edits.
type Leg struct {
	OrderIndex        int
	DepartureLocation string
	ArrivalLocation   string
	DepartureAt       *time.Time
	ArrivalAt         *time.Time
	DepartureKm       *decimal.Decimal
	ArrivalKm         *decimal.Decimal
}

func (l Leg) isEmpty() bool {
	return l.DepartureLocation == "" && l.ArrivalLocation == "" &&
		l.DepartureAt == nil && l.ArrivalAt == nil &&
		l.DepartureKm == nil && l.ArrivalKm == nil
}

// Input is the shared rendition payload of single and bulk upserts
type Input struct {
	Reason           string
	VehiclePlate     string
	AttachmentURL    string
	Notes            string
	ConsumedViaticos *decimal.Decimal
	Legs             []Leg
}

// NormalizeLegs trims locations, drops fully empty legs and renumbers the
// rest from 1. A partially filled leg must name both locations.
func NormalizeLegs(legs []Leg) ([]Leg, error) {
	out := make([]Leg, 0, len(legs))
	for i, leg := range legs {
		leg.DepartureLocation = strings.TrimSpace(leg.DepartureLocation)
		leg.ArrivalLocation = strings.TrimSpace(leg.ArrivalLocation)
		if leg.isEmpty() {
			continue
		}
		if leg.DepartureLocation == "" || leg.ArrivalLocation == "" {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Leg %d requires departure and arrival locations", i+1))
		}
		leg.OrderIndex = len(out) + 1
		out = append(out, leg)
	}
	return out, nil
}

// ValidateConsumption checks a consumed day count against the line's days
func ValidateConsumption(consumed *decimal.Decimal, available decimal.Decimal) error {
	if consumed == nil {
		return nil
	}
	if consumed.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Consumed viaticos cannot be negative")
	}
	if !valueobject.IsHalfStep(*consumed) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Consumed viaticos must be a multiple of 0.5")
	}
	if consumed.GreaterThan(available) {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Consumed viaticos %s exceed the %s available days", consumed, available))
	}
	return nil
}

// Normalize trims the text fields and cleans the legs
func (in Input) Normalize() (Input, error) {
	legs, err := NormalizeLegs(in.Legs)
	if err != nil {
		return Input{}, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	in.VehiclePlate = strings.ToUpper(strings.TrimSpace(in.VehiclePlate))
	in.AttachmentURL = strings.TrimSpace(in.AttachmentURL)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Legs = legs
	return in, nil
}

// Apply overwrites the rendition fields with the next input, creating the
// rendition when current is nil
func Apply(current *Rendition, line *request.LineItem, in Input, actor uuid.UUID) *Rendition {
	r := current
	if r == nil {
		r = &Rendition{
			BaseEntity:       shared.NewBaseEntity(),
			RequestWorkerID:  line.ID,
			RequestVersionID: line.VersionID,
			WorkerID:         line.WorkerID,
			CreatedBy:        actor,
		}
	} else {
		r.Touch()
	}
	r.Reason = in.Reason
	r.VehiclePlate = in.VehiclePlate
	r.AttachmentURL = in.AttachmentURL
	r.Notes = in.Notes
	r.ConsumedViaticos = in.ConsumedViaticos
	r.Legs = append([]Leg(nil), in.Legs...)
	return r
}

// BalanceAction is what the ledger must do after a rendition
type BalanceAction int

const (
	BalanceNone   BalanceAction = iota // not yet rendered
	BalanceDelete                      // fully consumed, no debt
	BalanceUpsert                      // unused days become a debit
)

// BalanceDecision is the ledger outcome of one rendered line
type BalanceDecision struct {
	Action     BalanceAction
	Key        ledger.Key
	UnusedDays decimal.Decimal
	Amount     decimal.Decimal
}

// DecideBalance turns a line's consumption into a ledger action keyed by
// (worker, RENDITION_BALANCE, version)
func DecideBalance(line *request.LineItem, consumed *decimal.Decimal) BalanceDecision {
	key := ledger.RenditionBalanceKey(line.WorkerID, line.VersionID)
	if consumed == nil {
		return BalanceDecision{Action: BalanceNone, Key: key}
	}
	unused := line.DaysCount.Sub(*consumed)
	if !unused.IsPositive() {
		return BalanceDecision{Action: BalanceDelete, Key: key, UnusedDays: decimal.Zero}
	}
	return BalanceDecision{
		Action:     BalanceUpsert,
		Key:        key,
		UnusedDays: unused,
		Amount:     line.DailyAmount.Mul(unused),
	}
}

// BalanceReason is the display text of a rendition debt entry
func BalanceReason(line *request.LineItem, unused decimal.Decimal) string {
	return fmt.Sprintf("Saldo rendicion %s (%s dias sin usar)", line.ID, unused)
}
