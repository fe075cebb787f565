package viatico

import (
	"context"

	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/workforce"
)

// TransactionScope provides transactional access to the viatico repositories.
// Every workflow action, batch application and rendition upsert runs inside
// one scope so that derived rows are written all together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - RequestRepo: the ViaticRequest aggregate including versions, line items,
//     day concepts, signatures, payments and correction requests.
//   - LedgerRepo: one entry per (worker, purpose, source); written by the
//     rendition and adjustment flows, never by the request flow.
//   - AdjustmentRepo: batches own their items.
type TransactionalRepositories interface {
	RequestRepo() request.Repository
	RateRepo() rate.Repository
	LedgerRepo() ledger.Repository
	AdjustmentRepo() adjustment.Repository
	RenditionRepo() rendition.Repository
	WorkerRepo() workforce.WorkerRepository
	AreaRepo() workforce.AreaRepository
	UserRepo() identity.UserRepository
}
