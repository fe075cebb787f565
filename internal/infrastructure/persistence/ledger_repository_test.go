package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/shared"
)

func TestGormLedgerRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()

	worker, version := uuid.New(), uuid.New()
	key := ledger.RenditionBalanceKey(worker, version)

	first, err := ledger.NewEntry(key, ledger.EntryTypeDebit, days("50000"), &version, "Saldo rendicion")
	require.NoError(t, err)
	stored, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)

	t.Run("second write of the key keeps its identity", func(t *testing.T) {
		next, err := ledger.NewEntry(key, ledger.EntryTypeDebit, days("25000"), &version, "Saldo rendicion corregido")
		require.NoError(t, err)

		got, err := repo.Upsert(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.True(t, days("25000").Equal(got.Amount))

		entries, err := repo.ListByWorker(ctx, worker)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Saldo rendicion corregido", entries[0].Reason)
	})

	t.Run("lookup by key", func(t *testing.T) {
		got, err := repo.FindByKeyForUpdate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = repo.FindByKeyForUpdate(ctx, ledger.RetroAdjustmentKey(worker, version))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete reports whether the key existed", func(t *testing.T) {
		deleted, err := repo.DeleteByKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.DeleteByKey(ctx, key)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestGormLedgerRepository_Balance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()
	worker := uuid.New()

	tests := []struct {
		key    ledger.Key
		signed string
	}{
		{ledger.RenditionBalanceKey(worker, uuid.New()), "-25000"},
		{ledger.RetroAdjustmentKey(worker, uuid.New()), "3000.50"},
		{ledger.RetroAdjustmentKey(worker, uuid.New()), "1000"},
		{ledger.RetroAdjustmentKey(uuid.New(), uuid.New()), "99999"},
	}
	for _, tt := range tests {
		e, err := ledger.NewSignedEntry(tt.key, days(tt.signed), nil, "")
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, e)
		require.NoError(t, err)
	}

	balance, err := repo.Balance(ctx, worker)
	require.NoError(t, err)
	assert.Equal(t, "-20999.5", balance.String())

	empty, err := repo.Balance(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}
