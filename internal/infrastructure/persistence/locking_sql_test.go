package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGorm opens gorm over sqlmock with the postgres dialect so the
// emitted SQL can be asserted
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormRequestRepository_SaveState_SQL(t *testing.T) {
	t.Run("guards on the previous lock version", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		req := newTestRequest(t, "REQ-0001", "2026-03-02", "2026-03-02", uuid.New())
		require.NoError(t, req.Cancel())

		mock.ExpectExec(`UPDATE "viatic_requests" SET .* WHERE \(?id = \$4 AND version = \$5`).
			WithArgs(request.StatusCancelled, sqlmock.AnyArg(), 2, req.ID, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewGormRequestRepository(db).SaveState(context.Background(), req))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected rows is a version conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()

		req := newTestRequest(t, "REQ-0001", "2026-03-02", "2026-03-02", uuid.New())
		require.NoError(t, req.Cancel())

		mock.ExpectExec(`UPDATE "viatic_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormRequestRepository(db).SaveState(context.Background(), req)
		assert.ErrorIs(t, err, shared.ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRequestRepository_AppendVersion_SQL(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()

	req := newTestRequest(t, "REQ-0001", "2026-03-02", "2026-03-02", uuid.New())
	req.Status = request.StatusTreasuryReturned
	next, _, err := req.Fork(request.CorrectionInput{}, uuid.New(), time.Now())
	require.NoError(t, err)

	// the pointer move is checked first; a lost race writes no version rows
	mock.ExpectExec(`UPDATE "viatic_requests" SET .* WHERE id = \$\d+ AND current_version_number = \$\d+ AND version = \$\d+`).
		WithArgs(2, request.StatusPendingSignature, sqlmock.AnyArg(), 2, req.ID, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewGormRequestRepository(db).AppendVersion(context.Background(), req, next)
	assert.ErrorIs(t, err, shared.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLedgerRepository_FindByKeyForUpdate_SQL(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()

	key := ledger.RetroAdjustmentKey(uuid.New(), uuid.New())
	mock.ExpectQuery(`SELECT \* FROM "worker_balance_ledger" WHERE .*worker_id = \$1 AND purpose = \$2 AND source_id = \$3.* FOR UPDATE`).
		WithArgs(key.WorkerID, key.Purpose, key.SourceID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormLedgerRepository(db).FindByKeyForUpdate(context.Background(), key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAdjustmentRepository_MarkApplied_SQL(t *testing.T) {
	applied := func(t *testing.T) *adjustment.Batch {
		b := newTestBatch(uuid.New())
		require.NoError(t, b.Apply(uuid.New(), time.Now().UTC()))
		return b
	}

	t.Run("flips batch then items", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		batch := applied(t)

		mock.ExpectExec(`UPDATE "viatic_adjustment_batches" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "viatic_adjustment_items" SET .* WHERE batch_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewGormAdjustmentRepository(db).MarkApplied(context.Background(), batch))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("batch no longer in draft", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		batch := applied(t)

		mock.ExpectExec(`UPDATE "viatic_adjustment_batches" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormAdjustmentRepository(db).MarkApplied(context.Background(), batch)
		assert.ErrorIs(t, err, shared.ErrAlreadyApplied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
