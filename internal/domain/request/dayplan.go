package request

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// DayPlanSchemaVersion is bumped whenever the stored payload shape changes
const DayPlanSchemaVersion = 1

// DefaultConcept is written when a day has no concept of its own
const DefaultConcept = "Concepto general"

// DayPlan is the structured planning payload captured at creation
type DayPlan struct {
	SchemaVersion int          `json:"schema_version"`
	Crew          string       `json:"crew,omitempty"`
	Location      string       `json:"location,omitempty"`
	Concepts      []string     `json:"concepts,omitempty"`
	Days          []PlannedDay `json:"days,omitempty"`
}

// PlannedDay lists who works on a date and what they do
type PlannedDay struct {
	Date      valueobject.Date `json:"date"`
	WorkerIDs []uuid.UUID      `json:"worker_ids,omitempty"`
	Concepts  []string         `json:"concepts,omitempty"`
}

// HasDays reports whether the plan schedules individual days
func (p DayPlan) HasDays() bool {
	return len(p.Days) > 0
}

// Validate checks that planned dates are unique and inside the range and
// that every scheduled worker is part of the selection.
func (p DayPlan) Validate(r valueobject.DateRange, selected map[uuid.UUID]bool) error {
	seen := make(map[string]bool, len(p.Days))
	for _, day := range p.Days {
		if day.Date.IsZero() {
			return shared.NewDomainError(shared.CodeInvalidInput, "Planned day requires a date")
		}
		key := day.Date.String()
		if seen[key] {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Day %s is planned twice", key))
		}
		seen[key] = true
		if !r.Contains(day.Date) {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Day %s is outside %s..%s", key, r.Start, r.End))
		}
		for _, id := range day.WorkerIDs {
			if !selected[id] {
				return shared.NewDomainError(shared.CodeInvalidInput,
					fmt.Sprintf("Worker %s is planned on %s but not selected", id, key))
			}
		}
	}
	return nil
}

// WorkerDays counts the planned days of each worker, once per date
func (p DayPlan) WorkerDays() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, day := range p.Days {
		unique := make(map[uuid.UUID]bool, len(day.WorkerIDs))
		for _, id := range day.WorkerIDs {
			if unique[id] {
				continue
			}
			unique[id] = true
			out[id]++
		}
	}
	return out
}

// ConceptsByDate expands the plan into day concepts over the range. With
// planned days each day carries its own concepts; otherwise every day of
// the range gets the plan-level concepts.
func (p DayPlan) ConceptsByDate(r valueobject.DateRange) []DayConcept {
	var out []DayConcept
	if p.HasDays() {
		for _, day := range p.Days {
			for _, text := range conceptsOrDefault(day.Concepts) {
				out = append(out, DayConcept{Date: day.Date, ConceptText: text})
			}
		}
		return out
	}
	concepts := conceptsOrDefault(p.Concepts)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		for _, text := range concepts {
			out = append(out, DayConcept{Date: d, ConceptText: text})
		}
	}
	return out
}

func conceptsOrDefault(concepts []string) []string {
	var out []string
	for _, c := range concepts {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []string{DefaultConcept}
	}
	return out
}

// WorkerAllocation selects a worker, optionally with an explicit day count
type WorkerAllocation struct {
	WorkerID uuid.UUID
	Days     *decimal.Decimal
}

// ResolvedAllocation is a worker with the day count that goes on the line
type ResolvedAllocation struct {
	WorkerID uuid.UUID
	Days     decimal.Decimal
}

// ResolveAllocations decides each worker's day count. A day plan wins over
// explicit counts and workers without planned days are dropped; otherwise
// the explicit count or the full range length is used. An explicit count
// must be a half-step within the length of the range.
func ResolveAllocations(p DayPlan, r valueobject.DateRange, allocations []WorkerAllocation) ([]ResolvedAllocation, error) {
	planned := p.WorkerDays()
	rangeDays := decimal.NewFromInt(int64(r.Days()))
	seen := make(map[uuid.UUID]bool, len(allocations))
	out := make([]ResolvedAllocation, 0, len(allocations))
	for _, a := range allocations {
		if seen[a.WorkerID] {
			continue
		}
		seen[a.WorkerID] = true

		var days decimal.Decimal
		switch {
		case p.HasDays():
			n := planned[a.WorkerID]
			if n <= 0 {
				continue
			}
			days = decimal.NewFromInt(int64(n))
		case a.Days != nil:
			days = *a.Days
			if days.IsNegative() || !valueobject.IsHalfStep(days) {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					fmt.Sprintf("Worker %s: days must be a non-negative multiple of 0.5", a.WorkerID))
			}
			if days.GreaterThan(rangeDays) {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					fmt.Sprintf("Worker %s: %s days exceed the %s days of %s..%s", a.WorkerID, days, rangeDays, r.Start, r.End))
			}
		default:
			days = rangeDays
		}
		out = append(out, ResolvedAllocation{WorkerID: a.WorkerID, Days: days})
	}
	return out, nil
}
