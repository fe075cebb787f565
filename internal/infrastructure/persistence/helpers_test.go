package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the shared-cache database alive for the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), zap.NewNop(), "silent")
	require.NoError(t, err)

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.All()...))
	return database.DB
}

func days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestRequest builds a request over [start, end] with one line per worker
func newTestRequest(t *testing.T, number, start, end string, workers ...uuid.UUID) *request.ViaticRequest {
	t.Helper()

	v, err := request.NewVersion(valueobject.MustParseDate(start), valueobject.MustParseDate(end), "Relevamiento", request.DayPlan{}, uuid.New())
	require.NoError(t, err)
	for _, w := range workers {
		_, err := v.AddLine(w, decimal.NewFromInt(int64(v.RangeDays())), days("25000"))
		require.NoError(t, err)
	}
	for d := v.StartDate; !d.After(v.EndDate); d = d.AddDays(1) {
		v.AddConcept(d, request.DefaultConcept)
	}

	req, err := request.NewViaticRequest(number, uuid.New(), uuid.New(), false, v)
	require.NoError(t, err)
	return req
}
