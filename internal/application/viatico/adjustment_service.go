package viatico

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"go.uber.org/zap"
)

// AdjustmentService reviews and applies retroactive adjustment batches
type AdjustmentService struct {
	scope    TransactionScope
	batches  adjustment.Repository
	resolver identity.ActorResolver
	audit    *auditRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdjustmentService creates a new adjustment service
func NewAdjustmentService(
	scope TransactionScope,
	batches adjustment.Repository,
	resolver identity.ActorResolver,
	sink audit.Sink,
	logger *zap.Logger,
) *AdjustmentService {
	return &AdjustmentService{
		scope:    scope,
		batches:  batches,
		resolver: resolver,
		audit:    newAuditRecorder(sink, logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (s *AdjustmentService) SetClock(now func() time.Time) {
	s.now = now
}

// ApplyBatch posts one ledger entry per item and flips the batch to APPLIED.
// The batch row stays locked until commit, so a concurrent apply sees the
// new status and fails with ALREADY_APPLIED.
func (s *AdjustmentService) ApplyBatch(ctx context.Context, actorID, batchID uuid.UUID) (*BatchResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var applied *adjustment.Batch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.AdjustmentRepo().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batch.Apply(actor.UserID, s.now()); err != nil {
			return err
		}
		for _, item := range batch.Items {
			entry, err := ledger.NewSignedEntry(
				ledger.RetroAdjustmentKey(item.WorkerID, item.ID),
				item.AmountDiff,
				nil,
				fmt.Sprintf("Ajuste retroactivo %s (%s dias)", batch.PeriodMonth, item.DaysAffected),
			)
			if err != nil {
				return err
			}
			if _, err := repos.LedgerRepo().Upsert(ctx, entry); err != nil {
				return err
			}
		}
		if err := repos.AdjustmentRepo().MarkApplied(ctx, batch); err != nil {
			return err
		}
		applied = batch
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to apply adjustment batch",
			zap.String("batch_id", batchID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Adjustment batch applied",
		zap.String("batch_id", applied.ID.String()),
		zap.Int("items", len(applied.Items)),
		zap.String("total_diff", applied.TotalDiff().String()))
	s.audit.record(ctx, audit.NewEvent(audit.EntityRate, applied.ID, audit.ActionApplyRateChange, map[string]any{
		"status": string(applied.Status),
		"items":  len(applied.Items),
	}, actor.UserID))

	resp := ToBatchResponse(applied)
	return &resp, nil
}

// GetBatch returns a batch with its items
func (s *AdjustmentService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// ListBatches returns batches newest first, optionally by status
func (s *AdjustmentService) ListBatches(ctx context.Context, status *adjustment.Status) ([]BatchResponse, error) {
	batches, err := s.batches.List(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, ToBatchResponse(b))
	}
	return out, nil
}
