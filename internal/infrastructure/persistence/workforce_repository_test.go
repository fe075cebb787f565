package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/workforce"
)

func TestGormWorkerRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkerRepository(db)
	ctx := context.Background()

	ana, err := workforce.NewWorker(workforce.WorkerInput{Legajo: "1001", Name: "Ana Paz", Bank: "Banco Santiago"})
	require.NoError(t, err)
	beto, err := workforce.NewWorker(workforce.WorkerInput{Legajo: "1002", Name: "Beto Ruiz"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, beto))
	require.NoError(t, repo.Create(ctx, ana))

	t.Run("duplicate legajo", func(t *testing.T) {
		dup, err := workforce.NewWorker(workforce.WorkerInput{Legajo: "1001", Name: "Otra"})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Banco Santiago", got.Bank)
		assert.True(t, got.IsActive())

		got, err = repo.FindByLegajo(ctx, "1002")
		require.NoError(t, err)
		assert.Equal(t, beto.ID, got.ID)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		exists, err := repo.ExistsByLegajo(ctx, "1001")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.ExistsByLegajo(ctx, "9999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, []uuid.UUID{ana.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ana.ID, got[0].ID)

		got, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Ana Paz", got[0].Name)
	})
}

func TestGormAreaRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAreaRepository(db)
	ctx := context.Background()

	area, err := workforce.NewArea("Santiago del Estero")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, area))

	got, err := repo.FindByName(ctx, "Santiago del Estero")
	require.NoError(t, err)
	assert.Equal(t, area.ID, got.ID)

	got, err = repo.FindByID(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, "Santiago del Estero", got.Name)

	_, err = repo.FindByName(ctx, "Capital")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dup, err := workforce.NewArea("Santiago del Estero")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	admin, err := identity.NewUser("Zoe Admin", "Zoe@Viaticos.gob.ar", identity.RoleAdmin)
	require.NoError(t, err)
	chief, err := identity.NewUser("Ariel Jefe", "ariel@viaticos.gob.ar", identity.RoleAreaChief)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, chief))

	t.Run("email lookup ignores case", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, " ZOE@viaticos.gob.ar ")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)
		assert.Equal(t, identity.RoleAdmin, got.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup, err := identity.NewUser("Otra", "zoe@viaticos.gob.ar", identity.RoleTreasury)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("list by role", func(t *testing.T) {
		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Ariel Jefe", all[0].Name)

		role := identity.RoleAdmin
		admins, err := repo.List(ctx, &role)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, admin.ID, admins[0].ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
