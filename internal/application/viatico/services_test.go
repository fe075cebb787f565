package viatico_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/domain/workforce"
	"github.com/viaticos/backend/internal/infrastructure/cache"
	"github.com/viaticos/backend/internal/infrastructure/lock"
	"github.com/viaticos/backend/internal/infrastructure/persistence"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

// MockSink is a mock implementation of audit.Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockRateCache is a mock implementation of RateCache
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) GetTimeline(ctx context.Context) (rate.Timeline, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(rate.Timeline), args.Bool(1), args.Error(2)
}

func (m *MockRateCache) SetTimeline(ctx context.Context, timeline rate.Timeline) error {
	args := m.Called(ctx, timeline)
	return args.Error(0)
}

func (m *MockRateCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// busyLocker never grants the lock
type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (appviatico.Lock, error) {
	return nil, appviatico.ErrLockNotObtained
}

type fixture struct {
	*appviatico.Services
	admin    uuid.UUID
	chief    uuid.UUID
	treasury uuid.UUID
}

type option func(*appviatico.Dependencies)

func withSink(s audit.Sink) option           { return func(d *appviatico.Dependencies) { d.Audit = s } }
func withCache(c appviatico.RateCache) option { return func(d *appviatico.Dependencies) { d.Cache = c } }
func withLocker(l appviatico.Locker) option   { return func(d *appviatico.Dependencies) { d.Locker = l } }

func newFixture(t *testing.T, now time.Time, opts ...option) *fixture {
	t.Helper()

	database, err := persistence.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), zap.NewNop(), "silent")
	require.NoError(t, err)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.All()...))

	db := database.DB
	settings := appviatico.DefaultSettings()
	settings.LockWaitTimeout = 50 * time.Millisecond
	deps := appviatico.Dependencies{
		Scope:       persistence.NewGormTransactionScope(db),
		Requests:    persistence.NewGormRequestRepository(db),
		Rates:       persistence.NewGormRateRepository(db),
		Ledger:      persistence.NewGormLedgerRepository(db),
		Adjustments: persistence.NewGormAdjustmentRepository(db),
		Workers:     persistence.NewGormWorkerRepository(db),
		Areas:       persistence.NewGormAreaRepository(db),
		Users:       persistence.NewGormUserRepository(db),
		Audit:       persistence.NewGormAuditLogRepository(db),
		Cache:       cache.NewRateCache(nil, settings.RateCacheTTL),
		Locker:      lock.New(nil),
		Settings:    settings,
		Logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	services := appviatico.NewServices(deps)
	clock := func() time.Time { return now }
	services.Rates.SetClock(clock)
	services.Requests.SetClock(clock)
	services.Workflow.SetClock(clock)
	services.Adjustments.SetClock(clock)

	f := &fixture{Services: services}
	seed := func(name, email string, role identity.Role) uuid.UUID {
		u, err := services.Users.EnsureUser(context.Background(), appviatico.CreateUserInput{Name: name, Email: email, Role: role})
		require.NoError(t, err)
		return u.ID
	}
	f.admin = seed("Admin", "admin@viaticos.test", identity.RoleAdmin)
	f.chief = seed("Jefe", "jefe@viaticos.test", identity.RoleAreaChief)
	f.treasury = seed("Tesoreria", "tesoreria@viaticos.test", identity.RoleTreasury)
	return f
}

func (f *fixture) worker(t *testing.T, legajo string) uuid.UUID {
	t.Helper()
	w, err := f.Workers.CreateWorker(context.Background(), f.admin, workforce.WorkerInput{Legajo: legajo, Name: "Worker " + legajo})
	require.NoError(t, err)
	return w.ID
}

func (f *fixture) request(t *testing.T, start, end string, workers ...uuid.UUID) *appviatico.RequestResponse {
	t.Helper()
	allocations := make([]request.WorkerAllocation, 0, len(workers))
	for _, w := range workers {
		allocations = append(allocations, request.WorkerAllocation{WorkerID: w})
	}
	r, err := f.Requests.CreateRequest(context.Background(), f.chief, appviatico.CreateRequestInput{
		StartDate: valueobject.MustParseDate(start),
		EndDate:   valueobject.MustParseDate(end),
		Workers:   allocations,
	})
	require.NoError(t, err)
	return r
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("numbers requests sequentially and freezes the default rate", func(t *testing.T) {
		f := newFixture(t, testNow)
		w := f.worker(t, "1001")

		first := f.request(t, "2026-03-02", "2026-03-04", w)
		second := f.request(t, "2026-03-05", "2026-03-05", w)

		assert.True(t, strings.HasPrefix(first.RequestNumber, "REQ-"))
		assert.NotEqual(t, first.RequestNumber, second.RequestNumber)
		assert.Equal(t, request.StatusSubmittedToAdmin, first.Status)

		line := first.Versions[0].Workers[0]
		assert.True(t, dec("3").Equal(line.DaysCount))
		assert.True(t, dec("25000").Equal(line.DailyAmount))
		assert.True(t, dec("75000").Equal(line.NetAmount))
	})

	t.Run("third request continues the sequence", func(t *testing.T) {
		f := newFixture(t, testNow)
		w := f.worker(t, "1001")
		f.request(t, "2026-03-02", "2026-03-02", w)
		f.request(t, "2026-03-02", "2026-03-02", w)
		second := f.request(t, "2026-03-02", "2026-03-02", w)
		third := f.request(t, "2026-03-02", "2026-03-02", w)

		n2, err := numberOf(second.RequestNumber)
		require.NoError(t, err)
		n3, err := numberOf(third.RequestNumber)
		require.NoError(t, err)
		assert.Equal(t, n2+1, n3)
	})

	t.Run("draft starts in DRAFT and explicit days win over the range", func(t *testing.T) {
		f := newFixture(t, testNow)
		w := f.worker(t, "1001")
		r, err := f.Requests.CreateRequest(ctx, f.chief, appviatico.CreateRequestInput{
			AreaName:  "Banda",
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-06"),
			Draft:     true,
			Workers:   []request.WorkerAllocation{{WorkerID: w, Days: decPtr("2.5")}},
		})
		require.NoError(t, err)
		assert.Equal(t, request.StatusDraft, r.Status)
		assert.True(t, dec("2.5").Equal(r.Versions[0].Workers[0].DaysCount))

		area, err := f.Workers.EnsureArea(ctx, "Banda")
		require.NoError(t, err)
		assert.Equal(t, "Banda", area.Name)

		areas, err := f.Workers.ListAreas(ctx)
		require.NoError(t, err)
		require.Len(t, areas, 1)
		assert.Equal(t, area.ID, areas[0].ID)
	})

	t.Run("explicit days longer than the range are refused", func(t *testing.T) {
		f := newFixture(t, testNow)
		w := f.worker(t, "1001")
		_, err := f.Requests.CreateRequest(ctx, f.chief, appviatico.CreateRequestInput{
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-03"),
			Workers:   []request.WorkerAllocation{{WorkerID: w, Days: decPtr("4")}},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		list, err := f.Requests.ListRequests(ctx, request.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, list.Total)
	})

	t.Run("treasury cannot create", func(t *testing.T) {
		f := newFixture(t, testNow)
		w := f.worker(t, "1001")
		_, err := f.Requests.CreateRequest(ctx, f.treasury, appviatico.CreateRequestInput{
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-02"),
			Workers:   []request.WorkerAllocation{{WorkerID: w}},
		})
		assert.ErrorIs(t, err, shared.ErrActorNotFound)
	})

	t.Run("unknown worker rolls back the new area", func(t *testing.T) {
		f := newFixture(t, testNow)
		_, err := f.Requests.CreateRequest(ctx, f.chief, appviatico.CreateRequestInput{
			AreaName:  "Loreto",
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-02"),
			Workers:   []request.WorkerAllocation{{WorkerID: uuid.New()}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		areas, err := f.Workers.ListAreas(ctx)
		require.NoError(t, err)
		assert.Empty(t, areas)
	})

	t.Run("busy numbering lock is a version conflict", func(t *testing.T) {
		f := newFixture(t, testNow, withLocker(busyLocker{}))
		w := f.worker(t, "1001")
		_, err := f.Requests.CreateRequest(ctx, f.chief, appviatico.CreateRequestInput{
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-02"),
			Workers:   []request.WorkerAllocation{{WorkerID: w}},
		})
		assert.ErrorIs(t, err, shared.ErrVersionConflict)
	})
}

func numberOf(requestNumber string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(requestNumber, "REQ-"))
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func TestWorkflowService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testNow)
	w := f.worker(t, "1001")
	r := f.request(t, "2026-03-02", "2026-03-03", w)

	t.Run("wrong role is refused before any change", func(t *testing.T) {
		_, err := f.Workflow.Sign(ctx, f.admin, r.ID)
		assert.ErrorIs(t, err, shared.ErrActorNotFound)
	})

	t.Run("out of order transition is a precondition failure", func(t *testing.T) {
		_, err := f.Workflow.Sign(ctx, f.chief, r.ID)
		assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	})

	t.Run("standardize assigns the first lote of the year", func(t *testing.T) {
		got, err := f.Workflow.Standardize(ctx, f.admin, r.ID, appviatico.StandardizeRequestInput{
			PlannedPaymentDate: valueobject.MustParseDate("2026-03-20"),
		})
		require.NoError(t, err)
		assert.Equal(t, request.StatusPendingSignature, got.Status)
		assert.Equal(t, "L-2026-0001", got.Versions[0].LoteNumber)
	})

	t.Run("sign then treasury return with defaults", func(t *testing.T) {
		_, err := f.Workflow.Sign(ctx, f.chief, r.ID)
		require.NoError(t, err)

		got, err := f.Workflow.RequestCorrection(ctx, f.treasury, r.ID, appviatico.RequestCorrectionInput{})
		require.NoError(t, err)
		assert.Equal(t, request.StatusTreasuryReturned, got.Status)
		corrections := got.Versions[0].Corrections
		require.Len(t, corrections, 1)
		assert.Equal(t, request.DefaultCorrectionReason, corrections[0].Reason)
		assert.False(t, corrections[0].SuggestedPaymentDate.IsZero())
	})

	t.Run("correction forks version 2 and resolves the return", func(t *testing.T) {
		got, err := f.Workflow.CreateCorrection(ctx, f.admin, r.ID, appviatico.CreateCorrectionInput{Notes: "CBU corregido"})
		require.NoError(t, err)
		assert.Equal(t, request.StatusPendingSignature, got.Status)
		assert.Equal(t, 2, got.CurrentVersionNumber)
		require.Len(t, got.Versions, 2)

		var active, previous appviatico.VersionResponse
		for _, v := range got.Versions {
			if v.Active {
				active = v
			} else {
				previous = v
			}
		}
		assert.Equal(t, 2, active.VersionNumber)
		assert.Equal(t, "L-2026-0001", active.LoteNumber)
		assert.Equal(t, "CBU corregido", active.Notes)
		assert.Nil(t, active.Signature)
		require.Len(t, previous.Corrections, 1)
		assert.Equal(t, request.CorrectionResolved, previous.Corrections[0].Status)
	})

	t.Run("payment is repeatable", func(t *testing.T) {
		_, err := f.Workflow.Sign(ctx, f.chief, r.ID)
		require.NoError(t, err)

		paid, err := f.Workflow.MarkPaid(ctx, f.treasury, r.ID, appviatico.MarkPaidInput{PaymentReference: "TRX-1"})
		require.NoError(t, err)
		assert.Equal(t, request.StatusPaid, paid.Status)

		again, err := f.Workflow.MarkPaid(ctx, f.treasury, r.ID, appviatico.MarkPaidInput{PaymentReference: "TRX-2"})
		require.NoError(t, err)
		for _, v := range again.Versions {
			if v.Active {
				require.NotNil(t, v.Payment)
				assert.Equal(t, "TRX-2", v.Payment.PaymentReference)
				assert.True(t, v.Payment.PaidAt.Equal(testNow))
			}
		}
	})

	t.Run("paid requests cannot be cancelled", func(t *testing.T) {
		_, err := f.Workflow.Cancel(ctx, f.admin, r.ID)
		assert.ErrorIs(t, err, shared.ErrPreconditionFailed)
	})

	t.Run("draft submit and cancel", func(t *testing.T) {
		draft, err := f.Requests.CreateRequest(ctx, f.chief, appviatico.CreateRequestInput{
			StartDate: valueobject.MustParseDate("2026-03-02"),
			EndDate:   valueobject.MustParseDate("2026-03-02"),
			Draft:     true,
			Workers:   []request.WorkerAllocation{{WorkerID: w}},
		})
		require.NoError(t, err)

		got, err := f.Workflow.Submit(ctx, f.chief, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, request.StatusSubmittedToAdmin, got.Status)

		got, err = f.Workflow.Cancel(ctx, f.admin, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, request.StatusCancelled, got.Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := f.Workflow.BeginReview(ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestRateService(t *testing.T) {
	ctx := context.Background()

	t.Run("current rate falls back to the default", func(t *testing.T) {
		f := newFixture(t, testNow)
		got, err := f.Rates.CurrentRate(ctx, valueobject.Date{})
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
		assert.True(t, dec("25000").Equal(got.Amount))
		assert.Equal(t, "2026-03-15", got.AsOf.String())
	})

	t.Run("only administrators set rates", func(t *testing.T) {
		f := newFixture(t, testNow)
		_, err := f.Rates.SetRate(ctx, f.chief, appviatico.SetRateInput{
			EffectiveFrom: valueobject.MustParseDate("2026-03-01"), Amount: dec("30000"),
		})
		assert.ErrorIs(t, err, shared.ErrActorNotFound)
	})

	t.Run("setting a rate invalidates the cache", func(t *testing.T) {
		mc := new(MockRateCache)
		mc.On("GetTimeline", mock.Anything).Return(nil, false, nil)
		mc.On("SetTimeline", mock.Anything, mock.Anything).Return(nil)
		mc.On("Invalidate", mock.Anything).Return(errors.New("redis down"))

		f := newFixture(t, testNow, withCache(mc))
		_, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
			EffectiveFrom: valueobject.MustParseDate("2026-03-01"), Amount: dec("30000"),
		})
		require.NoError(t, err)

		got, err := f.Rates.CurrentRate(ctx, valueobject.MustParseDate("2026-03-02"))
		require.NoError(t, err)
		assert.True(t, dec("30000").Equal(got.Amount))
		mc.AssertCalled(t, "Invalidate", mock.Anything)
		mc.AssertCalled(t, "SetTimeline", mock.Anything, mock.Anything)
	})

	t.Run("a cache read failure falls back to the store", func(t *testing.T) {
		mc := new(MockRateCache)
		mc.On("GetTimeline", mock.Anything).Return(nil, false, errors.New("redis down"))
		mc.On("SetTimeline", mock.Anything, mock.Anything).Return(nil)
		mc.On("Invalidate", mock.Anything).Return(nil)

		f := newFixture(t, testNow, withCache(mc))
		_, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
			EffectiveFrom: valueobject.MustParseDate("2026-02-01"), Amount: dec("27000"),
		})
		require.NoError(t, err)

		got, err := f.Rates.CurrentRate(ctx, valueobject.Date{})
		require.NoError(t, err)
		assert.False(t, got.IsDefault)
		assert.True(t, dec("27000").Equal(got.Amount))
	})
}

func TestAdjustmentService_RetroactiveBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testNow)

	_, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
		EffectiveFrom: valueobject.MustParseDate("2026-01-01"), Amount: dec("25000"),
	})
	require.NoError(t, err)

	ana, beto := f.worker(t, "1001"), f.worker(t, "1002")
	f.request(t, "2026-03-02", "2026-03-04", ana)
	f.request(t, "2026-03-08", "2026-03-12", beto)

	t.Run("same amount is not retroactive", func(t *testing.T) {
		resp, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
			EffectiveFrom: valueobject.MustParseDate("2026-02-01"), Amount: dec("25000"),
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Batch)
	})

	resp, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
		EffectiveFrom: valueobject.MustParseDate("2026-03-10"), Amount: dec("30000"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Batch)
	batch := resp.Batch

	t.Run("window covers only days before the new rate", func(t *testing.T) {
		byWorker := map[uuid.UUID]appviatico.BatchItemResponse{}
		for _, item := range batch.Items {
			byWorker[item.WorkerID] = item
		}
		require.Len(t, byWorker, 2)
		assert.True(t, dec("3").Equal(byWorker[ana].DaysAffected))
		assert.True(t, dec("15000").Equal(byWorker[ana].AmountDiff))
		assert.True(t, dec("2").Equal(byWorker[beto].DaysAffected))
		assert.True(t, dec("10000").Equal(byWorker[beto].AmountDiff))
		assert.True(t, dec("25000").Equal(batch.TotalDiff))
	})

	t.Run("apply credits every worker once", func(t *testing.T) {
		applied, err := f.Adjustments.ApplyBatch(ctx, f.admin, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, "APPLIED", string(applied.Status))
		require.NotNil(t, applied.AppliedBy)
		assert.Equal(t, f.admin, *applied.AppliedBy)

		_, err = f.Adjustments.ApplyBatch(ctx, f.admin, batch.ID)
		assert.ErrorIs(t, err, shared.ErrAlreadyApplied)

		balance, err := f.Workers.WorkerBalance(ctx, ana)
		require.NoError(t, err)
		assert.True(t, dec("15000").Equal(balance.Balance))

		entries, err := f.Workers.WorkerLedger(ctx, beto)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EntryTypeCredit, entries[0].Type)
		assert.Equal(t, ledger.PurposeRetroAdjustment, entries[0].Purpose)
	})

	t.Run("unknown batch", func(t *testing.T) {
		_, err := f.Adjustments.ApplyBatch(ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAdjustmentService_CountsEveryVersionOfForkedRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testNow)

	_, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
		EffectiveFrom: valueobject.MustParseDate("2026-01-01"), Amount: dec("25000"),
	})
	require.NoError(t, err)

	w := f.worker(t, "1001")
	r := f.request(t, "2026-03-02", "2026-03-04", w)

	_, err = f.Workflow.Standardize(ctx, f.admin, r.ID, appviatico.StandardizeRequestInput{})
	require.NoError(t, err)
	_, err = f.Workflow.Sign(ctx, f.chief, r.ID)
	require.NoError(t, err)
	_, err = f.Workflow.RequestCorrection(ctx, f.treasury, r.ID, appviatico.RequestCorrectionInput{})
	require.NoError(t, err)
	forked, err := f.Workflow.CreateCorrection(ctx, f.admin, r.ID, appviatico.CreateCorrectionInput{})
	require.NoError(t, err)
	require.Len(t, forked.Versions, 2)

	resp, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
		EffectiveFrom: valueobject.MustParseDate("2026-03-10"), Amount: dec("30000"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Batch)

	require.Len(t, resp.Batch.Items, 1)
	item := resp.Batch.Items[0]
	assert.Equal(t, w, item.WorkerID)
	assert.True(t, dec("6").Equal(item.DaysAffected), "got %s", item.DaysAffected)
	assert.True(t, dec("30000").Equal(item.AmountDiff), "got %s", item.AmountDiff)

	t.Run("cancelled requests drop out", func(t *testing.T) {
		other := f.worker(t, "1002")
		cancelled := f.request(t, "2026-03-02", "2026-03-03", other)
		_, err := f.Workflow.Cancel(ctx, f.admin, cancelled.ID)
		require.NoError(t, err)

		resp, err := f.Rates.SetRate(ctx, f.admin, appviatico.SetRateInput{
			EffectiveFrom: valueobject.MustParseDate("2026-03-12"), Amount: dec("35000"),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Batch)
		for _, item := range resp.Batch.Items {
			assert.NotEqual(t, other, item.WorkerID)
		}
	})
}

func TestRenditionService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testNow)
	w := f.worker(t, "1001")
	r := f.request(t, "2026-03-02", "2026-03-05", w)
	lineID := r.Versions[0].Workers[0].ID

	balance := func(t *testing.T) string {
		t.Helper()
		b, err := f.Workers.WorkerBalance(ctx, w)
		require.NoError(t, err)
		return b.Balance.String()
	}

	t.Run("unused days become a debit", func(t *testing.T) {
		got, err := f.Renditions.UpsertRendition(ctx, f.admin, lineID, rendition.Input{ConsumedViaticos: decPtr("2.5")})
		require.NoError(t, err)
		assert.True(t, dec("1.5").Equal(got.UnusedDays))
		assert.Equal(t, "-37500", balance(t))
	})

	t.Run("repeating the input keeps one entry", func(t *testing.T) {
		_, err := f.Renditions.UpsertRendition(ctx, f.admin, lineID, rendition.Input{ConsumedViaticos: decPtr("2.5")})
		require.NoError(t, err)
		entries, err := f.Workers.WorkerLedger(ctx, w)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("consuming every day removes the debit", func(t *testing.T) {
		_, err := f.Renditions.UpsertRendition(ctx, f.admin, lineID, rendition.Input{ConsumedViaticos: decPtr("4")})
		require.NoError(t, err)
		assert.Equal(t, "0", balance(t))
	})

	t.Run("only administrators render", func(t *testing.T) {
		_, err := f.Renditions.UpsertRendition(ctx, f.chief, lineID, rendition.Input{})
		assert.ErrorIs(t, err, shared.ErrActorNotFound)
	})

	t.Run("bulk needs at least one line", func(t *testing.T) {
		_, err := f.Renditions.UpsertRenditionBulk(ctx, f.admin, []uuid.UUID{uuid.Nil}, rendition.Input{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAuditFailuresDoNotFailOperations(t *testing.T) {
	sink := new(MockSink)
	sink.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(errors.New("audit store down"))

	f := newFixture(t, testNow, withSink(sink))
	w, err := f.Workers.CreateWorker(context.Background(), f.admin, workforce.WorkerInput{Legajo: "1001", Name: "Ana"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, w.ID)

	sink.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Action == audit.ActionCreateWorker && e.EntityID == w.ID
	}))
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testNow)

	t.Run("ensure user is idempotent by email", func(t *testing.T) {
		again, err := f.Users.EnsureUser(ctx, appviatico.CreateUserInput{Name: "Otro", Email: "ADMIN@viaticos.test", Role: identity.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, f.admin, again.ID)
	})

	t.Run("create rejects a duplicate email", func(t *testing.T) {
		_, err := f.Users.CreateUser(ctx, f.admin, appviatico.CreateUserInput{Name: "Dup", Email: "jefe@viaticos.test", Role: identity.RoleAreaChief})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("list by role", func(t *testing.T) {
		role := identity.RoleTreasury
		users, err := f.Users.ListUsers(ctx, &role)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, f.treasury, users[0].ID)
	})
}
