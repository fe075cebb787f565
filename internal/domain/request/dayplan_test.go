package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

func febRange(t *testing.T) valueobject.DateRange {
	t.Helper()
	r, err := valueobject.NewDateRange(valueobject.MustParseDate("2026-02-05"), valueobject.MustParseDate("2026-02-07"))
	require.NoError(t, err)
	return r
}

func TestDayPlan_Validate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	selected := map[uuid.UUID]bool{a: true}
	r := febRange(t)

	t.Run("valid plan", func(t *testing.T) {
		p := DayPlan{Days: []PlannedDay{{Date: valueobject.MustParseDate("2026-02-05"), WorkerIDs: []uuid.UUID{a}}}}
		assert.NoError(t, p.Validate(r, selected))
	})

	t.Run("date outside range", func(t *testing.T) {
		p := DayPlan{Days: []PlannedDay{{Date: valueobject.MustParseDate("2026-02-08")}}}
		assert.ErrorIs(t, p.Validate(r, selected), shared.ErrInvalidInput)
	})

	t.Run("duplicate date", func(t *testing.T) {
		d := valueobject.MustParseDate("2026-02-06")
		p := DayPlan{Days: []PlannedDay{{Date: d}, {Date: d}}}
		assert.ErrorIs(t, p.Validate(r, selected), shared.ErrInvalidInput)
	})

	t.Run("unselected worker", func(t *testing.T) {
		p := DayPlan{Days: []PlannedDay{{Date: valueobject.MustParseDate("2026-02-06"), WorkerIDs: []uuid.UUID{b}}}}
		assert.ErrorIs(t, p.Validate(r, selected), shared.ErrInvalidInput)
	})
}

func TestResolveAllocations(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	r := febRange(t)

	t.Run("plan counts days and drops idle workers", func(t *testing.T) {
		p := DayPlan{Days: []PlannedDay{
			{Date: valueobject.MustParseDate("2026-02-05"), WorkerIDs: []uuid.UUID{a, b, a}},
			{Date: valueobject.MustParseDate("2026-02-06"), WorkerIDs: []uuid.UUID{a}},
		}}
		got, err := ResolveAllocations(p, r, []WorkerAllocation{{WorkerID: a}, {WorkerID: b}, {WorkerID: c}})
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, a, got[0].WorkerID)
		assert.True(t, got[0].Days.Equal(decimal.NewFromInt(2)))
		assert.True(t, got[1].Days.Equal(decimal.NewFromInt(1)))
	})

	t.Run("without plan uses explicit or range days", func(t *testing.T) {
		half := decimal.RequireFromString("1.5")
		got, err := ResolveAllocations(DayPlan{}, r, []WorkerAllocation{{WorkerID: a, Days: &half}, {WorkerID: b}, {WorkerID: b}})
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.True(t, got[0].Days.Equal(half))
		assert.True(t, got[1].Days.Equal(decimal.NewFromInt(3)))
	})

	t.Run("explicit days must fit the range", func(t *testing.T) {
		tests := []struct {
			name string
			days string
			ok   bool
		}{
			{"whole range", "3", true},
			{"zero", "0", true},
			{"longer than the range", "3.5", false},
			{"negative", "-1", false},
			{"not a half step", "1.2", false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := decimal.RequireFromString(tt.days)
				got, err := ResolveAllocations(DayPlan{}, r, []WorkerAllocation{{WorkerID: a, Days: &d}})
				if tt.ok {
					require.NoError(t, err)
					require.Len(t, got, 1)
					assert.True(t, got[0].Days.Equal(d))
					return
				}
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				assert.Nil(t, got)
			})
		}
	})

	t.Run("plan ignores explicit counts", func(t *testing.T) {
		tooMany := decimal.NewFromInt(10)
		p := DayPlan{Days: []PlannedDay{{Date: valueobject.MustParseDate("2026-02-05"), WorkerIDs: []uuid.UUID{a}}}}
		got, err := ResolveAllocations(p, r, []WorkerAllocation{{WorkerID: a, Days: &tooMany}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Days.Equal(decimal.NewFromInt(1)))
	})
}

func TestDayPlan_ConceptsByDate(t *testing.T) {
	r := febRange(t)

	t.Run("range concepts with default", func(t *testing.T) {
		got := DayPlan{}.ConceptsByDate(r)
		require.Len(t, got, 3)
		assert.Equal(t, DefaultConcept, got[0].ConceptText)
		assert.Equal(t, "2026-02-07", got[2].Date.String())
	})

	t.Run("plan level concepts repeat every day", func(t *testing.T) {
		got := DayPlan{Concepts: []string{"Montaje", " ", "Relevamiento"}}.ConceptsByDate(r)
		assert.Len(t, got, 6)
	})

	t.Run("planned days carry their own concepts", func(t *testing.T) {
		p := DayPlan{Days: []PlannedDay{
			{Date: valueobject.MustParseDate("2026-02-05"), Concepts: []string{"Montaje"}},
			{Date: valueobject.MustParseDate("2026-02-06")},
		}}
		got := p.ConceptsByDate(r)
		require.Len(t, got, 2)
		assert.Equal(t, "Montaje", got[0].ConceptText)
		assert.Equal(t, DefaultConcept, got[1].ConceptText)
	})
}

func TestNextRequestNumber(t *testing.T) {
	now := time.UnixMilli(1767225600000)

	assert.Equal(t, "REQ-0001", NextRequestNumber("REQ-0000", now))
	assert.Equal(t, "REQ-0042", NextRequestNumber("REQ-0041", now))
	assert.Equal(t, "REQ-10000", NextRequestNumber("REQ-9999", now))
	assert.Equal(t, "REQ-1767225600000", NextRequestNumber("", now))
	assert.Equal(t, "REQ-1767225600000", NextRequestNumber("ABC", now))
}

func TestNextLoteNumber(t *testing.T) {
	assert.Equal(t, "L-2026-0001", NextLoteNumber(2026, ""))
	assert.Equal(t, "L-2026-0008", NextLoteNumber(2026, "L-2026-0007"))
	assert.Equal(t, "L-2026-0001", NextLoteNumber(2026, "L-2025-0031"))
	assert.Equal(t, "L-2026-0001", NextLoteNumber(2026, "lote manual"))
}
