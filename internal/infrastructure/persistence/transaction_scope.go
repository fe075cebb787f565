package persistence

import (
	"context"

	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appviatico.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) RequestRepo() request.Repository {
	return NewGormRequestRepository(r.tx)
}

func (r *gormTransactionalRepositories) RateRepo() rate.Repository {
	return NewGormRateRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) AdjustmentRepo() adjustment.Repository {
	return NewGormAdjustmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) RenditionRepo() rendition.Repository {
	return NewGormRenditionRepository(r.tx)
}

func (r *gormTransactionalRepositories) WorkerRepo() workforce.WorkerRepository {
	return NewGormWorkerRepository(r.tx)
}

func (r *gormTransactionalRepositories) AreaRepo() workforce.AreaRepository {
	return NewGormAreaRepository(r.tx)
}

func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appviatico.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appviatico.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
