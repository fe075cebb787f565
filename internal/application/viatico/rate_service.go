package viatico

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// SetRateInput registers a new daily amount from a date
type SetRateInput struct {
	EffectiveFrom valueobject.Date
	Amount        decimal.Decimal
	Note          string
}

// RateService manages the append-only rate timeline and triggers
// retroactive adjustment batches
type RateService struct {
	scope    TransactionScope
	rates    rate.Repository
	resolver identity.ActorResolver
	cache    RateCache
	audit    *auditRecorder
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewRateService creates a new rate service
func NewRateService(
	scope TransactionScope,
	rates rate.Repository,
	resolver identity.ActorResolver,
	cache RateCache,
	sink audit.Sink,
	settings Settings,
	logger *zap.Logger,
) *RateService {
	return &RateService{
		scope:    scope,
		rates:    rates,
		resolver: resolver,
		cache:    cache,
		audit:    newAuditRecorder(sink, logger),
		settings: settings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (s *RateService) SetClock(now func() time.Time) {
	s.now = now
}

// SetRate appends a rate entry and, when the previous rate differs, computes
// the DRAFT adjustment batch in the same transaction
func (s *RateService) SetRate(ctx context.Context, actorID uuid.UUID, in SetRateInput) (*SetRateResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	entry, err := rate.NewEntry(in.EffectiveFrom, in.Amount, in.Note, actor.UserID)
	if err != nil {
		return nil, err
	}

	var previous *rate.Entry
	var batch *adjustment.Batch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		prev, err := repos.RateRepo().FindPreviousTo(ctx, entry.EffectiveFrom)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		previous = prev
		if err := repos.RateRepo().Append(ctx, entry); err != nil {
			return err
		}

		change := rate.NewChange(entry, previous)
		if !change.IsRetroactive() {
			return nil
		}
		window, ok := adjustment.AffectedWindow(entry.EffectiveFrom)
		if !ok {
			return nil
		}
		versions, err := repos.RequestRepo().FindVersionsOverlapping(ctx, window.Start, window.End)
		if err != nil {
			return err
		}
		batch = adjustment.Compute(change, versions, actor.UserID)
		if batch == nil {
			return nil
		}
		return repos.AdjustmentRepo().Create(ctx, batch)
	})
	if err != nil {
		s.logger.Error("Failed to set rate",
			zap.String("effective_from", in.EffectiveFrom.String()),
			zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)

	events := []audit.Event{audit.NewEvent(audit.EntityRate, entry.ID, audit.ActionCreateRate, map[string]any{
		"effectiveFrom": entry.EffectiveFrom.String(),
		"amount":        entry.Amount.String(),
	}, actor.UserID)}
	resp := &SetRateResponse{Rate: ToRateResponse(entry)}
	if previous != nil {
		p := ToRateResponse(previous)
		resp.Previous = &p
	}
	if batch != nil {
		b := ToBatchResponse(batch)
		resp.Batch = &b
		events = append(events, audit.NewEvent(audit.EntityRate, batch.ID, audit.ActionCreateRateChange, map[string]any{
			"effectiveFrom": batch.EffectiveFrom.String(),
			"newAmount":     batch.NewAmount.String(),
			"oldAmount":     batch.OldAmount.String(),
		}, actor.UserID))
		s.logger.Info("Retroactive adjustment batch created",
			zap.String("batch_id", batch.ID.String()),
			zap.String("period", batch.PeriodMonth),
			zap.Int("items", len(batch.Items)))
	}
	s.audit.record(ctx, events...)
	return resp, nil
}

// CurrentRate returns the rate in force on asOf, or the configured default
func (s *RateService) CurrentRate(ctx context.Context, asOf valueobject.Date) (*EffectiveRateResponse, error) {
	if asOf.IsZero() {
		asOf = valueobject.DateOf(s.now())
	}
	timeline, err := s.timeline(ctx)
	if err != nil {
		return nil, err
	}
	if e, ok := timeline.EffectiveAt(asOf); ok {
		id := e.ID
		return &EffectiveRateResponse{AsOf: asOf, Amount: e.Amount, EffectiveFrom: e.EffectiveFrom, RateID: &id}, nil
	}
	return &EffectiveRateResponse{AsOf: asOf, Amount: s.settings.DefaultDailyAmount, IsDefault: true}, nil
}

// ListRates returns the full timeline ordered by effective date
func (s *RateService) ListRates(ctx context.Context) ([]RateResponse, error) {
	timeline, err := s.timeline(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RateResponse, 0, len(timeline))
	for i := range timeline {
		out = append(out, ToRateResponse(&timeline[i]))
	}
	return out, nil
}

// timeline reads through the cache; cache failures fall back to the store
func (s *RateService) timeline(ctx context.Context) (rate.Timeline, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetTimeline(ctx)
		if err != nil {
			s.logger.Warn("Rate cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}
	timeline, err := s.rates.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTimeline(ctx, timeline); err != nil {
			s.logger.Warn("Rate cache write failed", zap.Error(err))
		}
	}
	return timeline, nil
}

func (s *RateService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Rate cache invalidation failed", zap.Error(err))
	}
}
