package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

var fixedNow = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func newTestRequest(t *testing.T, workers int) *ViaticRequest {
	t.Helper()
	v, err := NewVersion(valueobject.MustParseDate("2026-02-05"), valueobject.MustParseDate("2026-02-14"), "", DayPlan{}, uuid.New())
	require.NoError(t, err)
	for range workers {
		_, err := v.AddLine(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(20000))
		require.NoError(t, err)
	}
	r, err := NewViaticRequest("REQ-0001", uuid.New(), uuid.New(), false, v)
	require.NoError(t, err)
	return r
}

func TestNewViaticRequest(t *testing.T) {
	t.Run("starts submitted at version 1", func(t *testing.T) {
		r := newTestRequest(t, 2)

		assert.Equal(t, StatusSubmittedToAdmin, r.Status)
		assert.Equal(t, 1, r.CurrentVersionNumber)
		assert.Equal(t, 1, r.GetVersion())
		active, err := r.ActiveVersion()
		require.NoError(t, err)
		assert.Equal(t, r.ID, active.RequestID)
		assert.Len(t, active.Workers, 2)
	})

	t.Run("draft flag", func(t *testing.T) {
		v, _ := NewVersion(valueobject.MustParseDate("2026-02-05"), valueobject.MustParseDate("2026-02-05"), "", DayPlan{}, uuid.New())
		_, _ = v.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(100))
		r, err := NewViaticRequest("REQ-0002", uuid.New(), uuid.New(), true, v)
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, r.Status)
	})

	t.Run("requires workers", func(t *testing.T) {
		v, _ := NewVersion(valueobject.MustParseDate("2026-02-05"), valueobject.MustParseDate("2026-02-06"), "", DayPlan{}, uuid.New())
		_, err := NewViaticRequest("REQ-0002", uuid.New(), uuid.New(), false, v)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewVersion(valueobject.MustParseDate("2026-02-06"), valueobject.MustParseDate("2026-02-05"), "", DayPlan{}, uuid.New())
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLineItem_Arithmetic(t *testing.T) {
	item, err := NewLineItem(uuid.New(), decimal.RequireFromString("2.5"), decimal.NewFromInt(20000))
	require.NoError(t, err)

	assert.True(t, item.GrossAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, item.NetAmount.Equal(item.GrossAmount))

	item.ApplyBalance(decimal.NewFromInt(7500))
	assert.True(t, item.NetAmount.Equal(decimal.NewFromInt(42500)))
	assert.True(t, item.NetAmount.Equal(item.GrossAmount.Sub(item.BalanceAppliedAmount)))

	t.Run("rejects non half step days", func(t *testing.T) {
		_, err := NewLineItem(uuid.New(), decimal.RequireFromString("1.3"), decimal.NewFromInt(100))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects non positive daily amount", func(t *testing.T) {
		_, err := NewLineItem(uuid.New(), decimal.NewFromInt(1), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestWorkflow_HappyPath(t *testing.T) {
	r := newTestRequest(t, 1)
	signer := uuid.New()

	v, err := r.Standardize(StandardizeInput{LoteNumber: "L-2026-0001", PlannedPaymentDate: valueobject.MustParseDate("2026-02-25")})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingSignature, r.Status)
	assert.Equal(t, "L-2026-0001", v.LoteNumber)

	sig, err := r.Sign(signer, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPayment, r.Status)
	assert.Equal(t, SignatureMethodPIN, sig.Method)
	assert.Len(t, sig.DocHash, 64)

	payment, err := r.MarkPaid(PaymentInput{PaymentReference: "TRX-1"}, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, r.Status)
	assert.Equal(t, fixedNow, payment.PaidAt)

	lockVersion := r.GetVersion()
	_, err = r.Sign(signer, fixedNow)
	assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	assert.Equal(t, StatusPaid, r.Status)
	assert.Equal(t, lockVersion, r.GetVersion())

	t.Run("payment details can be corrected after paid", func(t *testing.T) {
		updated, err := r.MarkPaid(PaymentInput{PaymentReference: "TRX-2"}, uuid.New(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, updated.ID)
		assert.Equal(t, "TRX-2", updated.PaymentReference)
	})
}

func TestStandardize_KeepsPreviousValues(t *testing.T) {
	r := newTestRequest(t, 1)
	active, _ := r.ActiveVersion()
	active.Notes = "original"
	active.LoteNumber = "L-2026-0003"

	v, err := r.Standardize(StandardizeInput{})
	require.NoError(t, err)
	assert.Equal(t, "original", v.Notes)
	assert.Equal(t, "L-2026-0003", v.LoteNumber)
}

func TestFork_CopiesLinesAndResolvesCorrections(t *testing.T) {
	r := newTestRequest(t, 3)
	_, err := r.Standardize(StandardizeInput{LoteNumber: "L-2026-0001"})
	require.NoError(t, err)
	_, err = r.Sign(uuid.New(), fixedNow)
	require.NoError(t, err)
	correction, err := r.RequestCorrection("", valueobject.Date{}, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, DefaultCorrectionReason, correction.Reason)
	assert.Equal(t, "2026-02-22", correction.SuggestedPaymentDate.String())
	assert.Equal(t, StatusTreasuryReturned, r.Status)

	require.NoError(t, r.BeginCorrection())
	assert.Equal(t, StatusAdminCorrection, r.Status)

	previous, _ := r.ActiveVersion()
	next, resolved, err := r.Fork(CorrectionInput{}, uuid.New(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, next.VersionNumber)
	assert.Equal(t, 2, r.CurrentVersionNumber)
	assert.Equal(t, StatusPendingSignature, r.Status)
	assert.Equal(t, DefaultCorrectionNotes, next.Notes)
	assert.Equal(t, "2026-02-22", next.PlannedPaymentDate.String())
	assert.Equal(t, "L-2026-0001", next.LoteNumber)
	assert.Nil(t, next.Signature)

	require.Len(t, next.Workers, 3)
	for i, w := range next.Workers {
		old := previous.Workers[i]
		assert.NotEqual(t, old.ID, w.ID)
		assert.Equal(t, next.ID, w.VersionID)
		assert.True(t, old.DaysCount.Equal(w.DaysCount))
		assert.True(t, old.DailyAmount.Equal(w.DailyAmount))
		assert.True(t, old.NetAmount.Equal(w.NetAmount))
	}
	require.Len(t, resolved, 1)
	assert.Equal(t, CorrectionResolved, resolved[0].Status)
	assert.Empty(t, previous.OpenCorrections())

	for i, v := range r.Versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}

func TestFork_OverrideWins(t *testing.T) {
	r := newTestRequest(t, 1)
	r.Status = StatusTreasuryReturned
	override := valueobject.MustParseDate("2026-03-01")

	next, _, err := r.Fork(CorrectionInput{PlannedPaymentDate: override, Notes: "cambio de banco"}, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.True(t, next.PlannedPaymentDate.Equal(override))
	assert.Equal(t, "cambio de banco", next.Notes)
}

func TestFork_FromDisallowedState(t *testing.T) {
	r := newTestRequest(t, 1)

	_, _, err := r.Fork(CorrectionInput{}, uuid.New(), fixedNow)
	assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	assert.Len(t, r.Versions, 1)
	assert.Equal(t, 1, r.CurrentVersionNumber)
}

func TestCancel(t *testing.T) {
	for _, s := range AllStatuses {
		t.Run(string(s), func(t *testing.T) {
			r := newTestRequest(t, 1)
			r.Status = s
			err := r.Cancel()
			if s == StatusPaid || s == StatusCancelled {
				assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, r.Status)
		})
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		want   Status
		ok     bool
	}{
		{ActionSubmit, StatusDraft, StatusSubmittedToAdmin, true},
		{ActionSubmit, StatusAdminReview, "", false},
		{ActionBeginReview, StatusSubmittedToAdmin, StatusAdminReview, true},
		{ActionStandardize, StatusAdminReview, StatusPendingSignature, true},
		{ActionStandardize, StatusDraft, "", false},
		{ActionSign, StatusReadyForPayment, "", false},
		{ActionMarkPaid, StatusPaid, StatusPaid, true},
		{ActionRequestCorrection, StatusPaid, "", false},
		{ActionCreateCorrection, StatusAdminCorrection, StatusPendingSignature, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.from), func(t *testing.T) {
			got, err := NextStatus(tt.action, tt.from)
			if !tt.ok {
				assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailableActions(t *testing.T) {
	assert.ElementsMatch(t,
		[]Action{ActionBeginReview, ActionStandardize, ActionCancel},
		AvailableActions(StatusSubmittedToAdmin, identity.RoleAdmin))
	assert.Equal(t, []Action{ActionSign}, AvailableActions(StatusPendingSignature, identity.RoleAreaChief))
	assert.Empty(t, AvailableActions(StatusPaid, identity.RoleAdmin))
}

func TestDocumentHash_ChangesWithContent(t *testing.T) {
	r := newTestRequest(t, 1)
	v, _ := r.ActiveVersion()

	first, err := DocumentHash(r, v)
	require.NoError(t, err)
	again, err := DocumentHash(r, v)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	v.LoteNumber = "L-2026-0009"
	changed, err := DocumentHash(r, v)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pendiente de firma", StatusPendingSignature.Label())
	assert.Equal(t, "UNKNOWN", Status("UNKNOWN").Label())
	assert.False(t, Status("UNKNOWN").IsValid())
}
