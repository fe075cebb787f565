package viatico

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RenditionService records expense reports and keeps the rendition debt of
// every line in sync with the ledger
type RenditionService struct {
	scope    TransactionScope
	resolver identity.ActorResolver
	audit    *auditRecorder
	logger   *zap.Logger
}

// NewRenditionService creates a new rendition service
func NewRenditionService(scope TransactionScope, resolver identity.ActorResolver, sink audit.Sink, logger *zap.Logger) *RenditionService {
	return &RenditionService{
		scope:    scope,
		resolver: resolver,
		audit:    newAuditRecorder(sink, logger),
		logger:   logger,
	}
}

// UpsertRendition creates or overwrites the rendition of one line.
// Repeating the same input leaves the rendition and the ledger unchanged.
func (s *RenditionService) UpsertRendition(ctx context.Context, actorID, requestWorkerID uuid.UUID, in rendition.Input) (*RenditionResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}

	var resp RenditionResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.RequestRepo().FindLineItemByID(ctx, requestWorkerID)
		if err != nil {
			return err
		}
		if err := rendition.ValidateConsumption(in.ConsumedViaticos, line.DaysCount); err != nil {
			return err
		}
		r, decision, err := s.upsertLine(ctx, repos, line, in, actor.UserID)
		if err != nil {
			return err
		}
		resp = ToRenditionResponse(r, decision)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, audit.NewEvent(audit.EntityRendition, resp.ID, audit.ActionUpsertRendition, map[string]any{
		"requestWorkerId": requestWorkerID.String(),
		"legs":            len(resp.Legs),
	}, actor.UserID))
	return &resp, nil
}

// UpsertRenditionBulk applies one input to several lines in one transaction.
// Every line is validated before anything is written.
func (s *RenditionService) UpsertRenditionBulk(ctx context.Context, actorID uuid.UUID, requestWorkerIDs []uuid.UUID, in rendition.Input) (*BulkRenditionResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	ids := uniqueIDs(requestWorkerIDs)
	if len(ids) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Select at least one worker line")
	}
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}

	resp := &BulkRenditionResponse{Renditions: make([]RenditionResponse, 0, len(ids))}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines := make([]*request.LineItem, 0, len(ids))
		for _, id := range ids {
			line, err := repos.RequestRepo().FindLineItemByID(ctx, id)
			if err != nil {
				return err
			}
			if err := rendition.ValidateConsumption(in.ConsumedViaticos, line.DaysCount); err != nil {
				return err
			}
			lines = append(lines, line)
		}
		for _, line := range lines {
			r, decision, err := s.upsertLine(ctx, repos, line, in, actor.UserID)
			if err != nil {
				return err
			}
			if decision.Action == rendition.BalanceUpsert {
				resp.BalanceCount++
			}
			resp.Renditions = append(resp.Renditions, ToRenditionResponse(r, decision))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bulk rendition applied",
		zap.Int("lines", len(resp.Renditions)),
		zap.Int("balance_count", resp.BalanceCount))
	events := make([]audit.Event, 0, len(resp.Renditions))
	for _, r := range resp.Renditions {
		events = append(events, audit.NewEvent(audit.EntityRendition, r.ID, audit.ActionUpsertRenditionBulk, map[string]any{
			"requestWorkerId": r.RequestWorkerID.String(),
			"legs":            len(r.Legs),
		}, actor.UserID))
	}
	s.audit.record(ctx, events...)
	return resp, nil
}

// upsertLine saves the rendition of a validated line and syncs its balance entry
func (s *RenditionService) upsertLine(
	ctx context.Context,
	repos TransactionalRepositories,
	line *request.LineItem,
	in rendition.Input,
	actorID uuid.UUID,
) (*rendition.Rendition, rendition.BalanceDecision, error) {
	current, err := repos.RenditionRepo().FindByRequestWorker(ctx, line.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, rendition.BalanceDecision{}, err
	}
	r := rendition.Apply(current, line, in, actorID)
	if err := repos.RenditionRepo().Save(ctx, r); err != nil {
		return nil, rendition.BalanceDecision{}, err
	}

	decision := rendition.DecideBalance(line, in.ConsumedViaticos)
	switch decision.Action {
	case rendition.BalanceDelete:
		if _, err := repos.LedgerRepo().DeleteByKey(ctx, decision.Key); err != nil {
			return nil, decision, err
		}
	case rendition.BalanceUpsert:
		versionID := line.VersionID
		entry, err := ledger.NewEntry(decision.Key, ledger.EntryTypeDebit, decision.Amount, &versionID,
			rendition.BalanceReason(line, decision.UnusedDays))
		if err != nil {
			return nil, decision, err
		}
		if _, err := repos.LedgerRepo().Upsert(ctx, entry); err != nil {
			return nil, decision, err
		}
	}
	return r, decision, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
