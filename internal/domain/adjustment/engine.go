package adjustment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// AffectedWindow returns the back-paid days of a change effective on eff:
// the days of the same month before eff. ok is false when eff is the 1st.
func AffectedWindow(eff valueobject.Date) (valueobject.DateRange, bool) {
	start := eff.MonthStart()
	end := eff.AddDays(-1)
	if end.Before(start) {
		return valueobject.DateRange{}, false
	}
	return valueobject.DateRange{Start: start, End: end}, true
}

// ScaledDays prorates a line's days to the overlapped part of its version:
// max(1, round(days × overlap / rangeDays)), rounding half away from zero.
func ScaledDays(days decimal.Decimal, overlapDays, rangeDays int) decimal.Decimal {
	if rangeDays <= 0 {
		rangeDays = 1
	}
	scaled := days.Mul(decimal.NewFromInt(int64(overlapDays))).
		Div(decimal.NewFromInt(int64(rangeDays))).
		Round(0)
	return decimal.Max(decimal.NewFromInt(1), scaled)
}

type aggregate struct {
	days   decimal.Decimal
	amount decimal.Decimal
}

// Compute builds the DRAFT batch of a rate change against the versions of
// non-cancelled requests. Every version counts, so a forked request
// contributes once per version. It returns nil when the change is not
// retroactive or has no affected window. Only lines frozen at the old amount
// are adjusted; workers already on the new rate are untouched.
func Compute(change rate.Change, versions []*request.Version, createdBy uuid.UUID) *Batch {
	if !change.IsRetroactive() {
		return nil
	}
	eff := change.Entry.EffectiveFrom
	window, ok := AffectedWindow(eff)
	if !ok {
		return nil
	}
	diff := change.Diff()

	order := make([]uuid.UUID, 0)
	totals := make(map[uuid.UUID]*aggregate)
	for _, v := range versions {
		overlap := v.Range().Overlap(window)
		if overlap <= 0 {
			continue
		}
		rangeDays := v.RangeDays()
		for _, line := range v.Workers {
			if !line.DailyAmount.Equal(change.OldAmount) {
				continue
			}
			scaled := ScaledDays(line.DaysCount, overlap, rangeDays)
			agg, seen := totals[line.WorkerID]
			if !seen {
				agg = &aggregate{days: decimal.Zero, amount: decimal.Zero}
				totals[line.WorkerID] = agg
				order = append(order, line.WorkerID)
			}
			agg.days = agg.days.Add(scaled)
			agg.amount = agg.amount.Add(diff.Mul(scaled))
		}
	}

	batch := &Batch{
		BaseEntity:    shared.NewBaseEntity(),
		PeriodMonth:   eff.PeriodMonth(),
		EffectiveFrom: eff,
		OldAmount:     change.OldAmount,
		NewAmount:     change.NewAmount,
		RateEntryID:   change.Entry.ID,
		Status:        StatusDraft,
		CreatedBy:     createdBy,
	}
	for _, workerID := range order {
		agg := totals[workerID]
		if agg.days.IsZero() || agg.amount.IsZero() {
			continue
		}
		batch.Items = append(batch.Items, &Item{
			BaseEntity:   shared.NewBaseEntity(),
			BatchID:      batch.ID,
			WorkerID:     workerID,
			DaysAffected: agg.days,
			AmountDiff:   agg.amount,
			Status:       StatusDraft,
		})
	}
	return batch
}
