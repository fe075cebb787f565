package rendition

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
)

func ptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func newLine(t *testing.T, days string) *request.LineItem {
	t.Helper()
	line, err := request.NewLineItem(uuid.New(), decimal.RequireFromString(days), decimal.NewFromInt(20000))
	require.NoError(t, err)
	line.VersionID = uuid.New()
	return line
}

func TestValidateConsumption(t *testing.T) {
	three := decimal.NewFromInt(3)

	tests := []struct {
		name     string
		consumed *decimal.Decimal
		wantErr  bool
	}{
		{"nil is allowed", nil, false},
		{"half step", ptr("2.5"), false},
		{"all days", ptr("3"), false},
		{"not half step", ptr("2.3"), true},
		{"negative", ptr("-0.5"), true},
		{"exceeds days", ptr("3.5"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConsumption(tt.consumed, three)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeLegs(t *testing.T) {
	at := time.Date(2026, 2, 5, 8, 30, 0, 0, time.UTC)

	t.Run("drops empty legs and renumbers", func(t *testing.T) {
		legs, err := NormalizeLegs([]Leg{
			{},
			{DepartureLocation: " Santiago ", ArrivalLocation: "La Banda", DepartureAt: &at},
			{DepartureLocation: "  "},
			{DepartureLocation: "La Banda", ArrivalLocation: "Santiago", ArrivalKm: ptr("120")},
		})
		require.NoError(t, err)
		require.Len(t, legs, 2)
		assert.Equal(t, 1, legs[0].OrderIndex)
		assert.Equal(t, "Santiago", legs[0].DepartureLocation)
		assert.Equal(t, 2, legs[1].OrderIndex)
	})

	t.Run("partial leg without both locations", func(t *testing.T) {
		_, err := NormalizeLegs([]Leg{{DepartureLocation: "Santiago", DepartureKm: ptr("10")}})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestDecideBalance(t *testing.T) {
	line := newLine(t, "3")

	t.Run("unrendered line does nothing", func(t *testing.T) {
		assert.Equal(t, BalanceNone, DecideBalance(line, nil).Action)
	})

	t.Run("fully consumed deletes", func(t *testing.T) {
		got := DecideBalance(line, ptr("3"))
		assert.Equal(t, BalanceDelete, got.Action)
		assert.Equal(t, ledger.RenditionBalanceKey(line.WorkerID, line.VersionID), got.Key)
	})

	t.Run("half day unused becomes debt", func(t *testing.T) {
		got := DecideBalance(line, ptr("2.5"))
		assert.Equal(t, BalanceUpsert, got.Action)
		assert.True(t, got.UnusedDays.Equal(decimal.RequireFromString("0.5")))
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(10000)))
	})
}

func TestApply(t *testing.T) {
	line := newLine(t, "3")
	actor := uuid.New()
	in, err := Input{Reason: " Obra ", VehiclePlate: "ab123cd", ConsumedViaticos: ptr("2")}.Normalize()
	require.NoError(t, err)

	created := Apply(nil, line, in, actor)
	assert.Equal(t, line.ID, created.RequestWorkerID)
	assert.Equal(t, line.VersionID, created.RequestVersionID)
	assert.Equal(t, "Obra", created.Reason)
	assert.Equal(t, "AB123CD", created.VehiclePlate)

	updated := Apply(created, line, Input{Notes: "segunda"}, uuid.New())
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, actor, updated.CreatedBy)
	assert.Nil(t, updated.ConsumedViaticos)
	assert.Equal(t, "segunda", updated.Notes)
}
