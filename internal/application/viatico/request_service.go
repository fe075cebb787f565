package viatico

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/domain/workforce"
	"go.uber.org/zap"
)

// CreateRequestInput is the wizard payload of a new request
type CreateRequestInput struct {
	AreaName  string
	StartDate valueobject.Date
	EndDate   valueobject.Date
	Notes     string
	Draft     bool
	Plan      request.DayPlan
	Workers   []request.WorkerAllocation
}

// RateLookup resolves the daily amount to freeze into new lines
type RateLookup interface {
	CurrentRate(ctx context.Context, asOf valueobject.Date) (*EffectiveRateResponse, error)
}

// RequestService creates and reads viatic requests
type RequestService struct {
	scope    TransactionScope
	requests request.Repository
	resolver identity.ActorResolver
	rates    RateLookup
	locker   Locker
	audit    *auditRecorder
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(
	scope TransactionScope,
	requests request.Repository,
	resolver identity.ActorResolver,
	rates RateLookup,
	sink audit.Sink,
	settings Settings,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		scope:    scope,
		requests: requests,
		resolver: resolver,
		rates:    rates,
		audit:    newAuditRecorder(sink, logger),
		settings: settings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetLocker sets the lock used to serialize request numbering
func (s *RequestService) SetLocker(locker Locker) {
	s.locker = locker
}

// SetClock overrides the time source
func (s *RequestService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateRequest opens a request with version 1. The daily amount in force
// today is frozen into every line.
func (s *RequestService) CreateRequest(ctx context.Context, actorID uuid.UUID, in CreateRequestInput) (*RequestResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, request.CreateRoles...)
	if err != nil {
		return nil, err
	}
	dateRange, err := valueobject.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	if len(in.Workers) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one worker is required")
	}
	selected := make(map[uuid.UUID]bool, len(in.Workers))
	for _, w := range in.Workers {
		selected[w.WorkerID] = true
	}
	if err := in.Plan.Validate(dateRange, selected); err != nil {
		return nil, err
	}
	allocations, err := request.ResolveAllocations(in.Plan, dateRange, in.Workers)
	if err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "No worker has planned days")
	}

	today := valueobject.DateOf(s.now())
	current, err := s.rates.CurrentRate(ctx, today)
	if err != nil {
		return nil, err
	}

	release, err := s.lockNumbering(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *request.ViaticRequest
	attempt := func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			area, err := ensureArea(ctx, repos.AreaRepo(), s.areaName(in.AreaName))
			if err != nil {
				return err
			}
			if err := requireWorkers(ctx, repos.WorkerRepo(), allocations); err != nil {
				return err
			}

			version, err := request.NewVersion(in.StartDate, in.EndDate, in.Notes, in.Plan, actor.UserID)
			if err != nil {
				return err
			}
			for _, a := range allocations {
				if _, err := version.AddLine(a.WorkerID, a.Days, current.Amount); err != nil {
					return err
				}
			}
			for _, c := range in.Plan.ConceptsByDate(dateRange) {
				version.AddConcept(c.Date, c.ConceptText)
			}

			latest, err := repos.RequestRepo().LatestRequestNumber(ctx)
			if err != nil {
				return err
			}
			number := request.NextRequestNumber(latest, s.now())
			req, err := request.NewViaticRequest(number, area.ID, actor.UserID, in.Draft, version)
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().Create(ctx, req); err != nil {
				return err
			}
			created = req
			return nil
		})
	}

	err = attempt()
	if errors.Is(err, shared.ErrAlreadyExists) {
		s.logger.Warn("Request number taken, retrying once", zap.Error(err))
		err = attempt()
		if errors.Is(err, shared.ErrAlreadyExists) {
			err = shared.NewDomainError(shared.CodeVersionConflict, "Could not allocate a request number")
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Viatic request created",
		zap.String("request_id", created.ID.String()),
		zap.String("request_number", created.RequestNumber),
		zap.String("status", string(created.Status)))
	s.audit.record(ctx, requestEvent(created, request.ActionCreate, actor.UserID))

	resp := ToRequestResponse(created)
	return &resp, nil
}

// GetRequest returns a request with every version
func (s *RequestService) GetRequest(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(req)
	return &resp, nil
}

// ListRequests returns a page of requests
func (s *RequestService) ListRequests(ctx context.Context, filter request.ListFilter) (shared.Paginated[RequestListItemResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}
	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return shared.Paginated[RequestListItemResponse]{}, err
	}
	out := make([]RequestListItemResponse, 0, len(items))
	for _, r := range items {
		out = append(out, ToRequestListItemResponse(r))
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

func (s *RequestService) areaName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.settings.DefaultArea
}

// lockNumbering takes the numbering lock, retrying until LockWaitTimeout
func (s *RequestService) lockNumbering(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	deadline := time.Now().Add(s.settings.LockWaitTimeout)
	for {
		lock, err := s.locker.Acquire(ctx, RequestNumberLockKey, s.settings.RequestNumberLockTTL)
		if err == nil {
			return func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("Failed to release request number lock", zap.Error(err))
				}
			}, nil
		}
		if !errors.Is(err, ErrLockNotObtained) {
			return nil, fmt.Errorf("acquire request number lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, shared.NewDomainError(shared.CodeVersionConflict, "Request numbering is busy, try again")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// ensureArea returns the area with the given name, creating it on first use
func ensureArea(ctx context.Context, areas workforce.AreaRepository, name string) (*workforce.Area, error) {
	area, err := areas.FindByName(ctx, name)
	if err == nil {
		return area, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	area, err = workforce.NewArea(name)
	if err != nil {
		return nil, err
	}
	if err := areas.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

func requireWorkers(ctx context.Context, workers workforce.WorkerRepository, allocations []request.ResolvedAllocation) error {
	ids := make([]uuid.UUID, 0, len(allocations))
	for _, a := range allocations {
		ids = append(ids, a.WorkerID)
	}
	found, err := workers.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, w := range found {
		known[w.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Worker %s not found", id))
		}
	}
	return nil
}

func requestEvent(r *request.ViaticRequest, action request.Action, actorID uuid.UUID) audit.Event {
	return audit.NewEvent(audit.EntityRequest, r.ID, string(action), map[string]any{
		"status":        string(r.Status),
		"versionNumber": r.CurrentVersionNumber,
	}, actorID)
}
