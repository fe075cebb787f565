package viatico

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/workforce"
	"go.uber.org/zap"
)

// WorkerService manages workers, areas and worker balances
type WorkerService struct {
	scope    TransactionScope
	workers  workforce.WorkerRepository
	areas    workforce.AreaRepository
	ledger   ledger.Repository
	resolver identity.ActorResolver
	audit    *auditRecorder
	logger   *zap.Logger
}

// NewWorkerService creates a new worker service
func NewWorkerService(
	scope TransactionScope,
	workers workforce.WorkerRepository,
	areas workforce.AreaRepository,
	entries ledger.Repository,
	resolver identity.ActorResolver,
	sink audit.Sink,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		scope:    scope,
		workers:  workers,
		areas:    areas,
		ledger:   entries,
		resolver: resolver,
		audit:    newAuditRecorder(sink, logger),
		logger:   logger,
	}
}

// CreateWorker registers a new active worker
func (s *WorkerService) CreateWorker(ctx context.Context, actorID uuid.UUID, in workforce.WorkerInput) (*WorkerResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	worker, err := workforce.NewWorker(in)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.WorkerRepo().ExistsByLegajo(ctx, worker.Legajo)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Worker with legajo %s already exists", worker.Legajo))
		}
		return repos.WorkerRepo().Create(ctx, worker)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Worker created",
		zap.String("worker_id", worker.ID.String()),
		zap.String("legajo", worker.Legajo))
	s.audit.record(ctx, audit.NewEvent(audit.EntityWorker, worker.ID, audit.ActionCreateWorker, map[string]any{
		"legajo": worker.Legajo,
		"name":   worker.Name,
	}, actor.UserID))

	resp := ToWorkerResponse(worker)
	return &resp, nil
}

// ListWorkers returns every worker ordered by name
func (s *WorkerService) ListWorkers(ctx context.Context) ([]WorkerResponse, error) {
	workers, err := s.workers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WorkerResponse, 0, len(workers))
	for _, w := range workers {
		out = append(out, ToWorkerResponse(w))
	}
	return out, nil
}

// ListAreas returns every area ordered by name
func (s *WorkerService) ListAreas(ctx context.Context) ([]AreaResponse, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AreaResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, ToAreaResponse(a))
	}
	return out, nil
}

// EnsureArea returns the named area, creating it on first use
func (s *WorkerService) EnsureArea(ctx context.Context, name string) (*AreaResponse, error) {
	name = strings.TrimSpace(name)
	var area *workforce.Area
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := ensureArea(ctx, repos.AreaRepo(), name)
		if err != nil {
			return err
		}
		area = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// WorkerBalance returns Σcredits − Σdebits of a worker
func (s *WorkerService) WorkerBalance(ctx context.Context, workerID uuid.UUID) (*WorkerBalanceResponse, error) {
	if _, err := s.workers.FindByID(ctx, workerID); err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return &WorkerBalanceResponse{WorkerID: workerID, Balance: balance}, nil
}

// WorkerLedger returns the entries of a worker, oldest first
func (s *WorkerService) WorkerLedger(ctx context.Context, workerID uuid.UUID) ([]LedgerEntryResponse, error) {
	if _, err := s.workers.FindByID(ctx, workerID); err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToLedgerEntryResponse(e))
	}
	return out, nil
}
