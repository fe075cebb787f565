package viatico

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// StandardizeRequestInput holds the administrative fields of a version
type StandardizeRequestInput struct {
	LoteNumber         string
	PlannedPaymentDate valueobject.Date
	Notes              string
}

// CreateCorrectionInput overrides fields of the forked version
type CreateCorrectionInput struct {
	LoteNumber         string
	PlannedPaymentDate valueobject.Date
	Notes              string
}

// MarkPaidInput describes a treasury payment
type MarkPaidInput struct {
	PaidAt           time.Time
	PaymentReference string
	Notes            string
}

// RequestCorrectionInput describes a treasury return
type RequestCorrectionInput struct {
	Reason               string
	SuggestedPaymentDate valueobject.Date
}

// WorkflowService drives requests through their lifecycle.
// Each action loads the aggregate, applies the domain transition and
// persists it with a compare-and-swap on the lock version.
type WorkflowService struct {
	scope    TransactionScope
	resolver identity.ActorResolver
	audit    *auditRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(scope TransactionScope, resolver identity.ActorResolver, sink audit.Sink, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		scope:    scope,
		resolver: resolver,
		audit:    newAuditRecorder(sink, logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (s *WorkflowService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit moves a draft to the administration queue
func (s *WorkflowService) Submit(ctx context.Context, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.simple(ctx, actorID, requestID, request.ActionSubmit, (*request.ViaticRequest).Submit)
}

// BeginReview marks the request as under administrative review
func (s *WorkflowService) BeginReview(ctx context.Context, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.simple(ctx, actorID, requestID, request.ActionBeginReview, (*request.ViaticRequest).BeginReview)
}

// BeginCorrection acknowledges a treasury return
func (s *WorkflowService) BeginCorrection(ctx context.Context, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.simple(ctx, actorID, requestID, request.ActionBeginCorrection, (*request.ViaticRequest).BeginCorrection)
}

// Cancel voids a request that has not been paid
func (s *WorkflowService) Cancel(ctx context.Context, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.simple(ctx, actorID, requestID, request.ActionCancel, (*request.ViaticRequest).Cancel)
}

// Standardize writes lote, planned payment date and notes on the active
// version. A version without lote gets the next number of the year.
func (s *WorkflowService) Standardize(ctx context.Context, actorID, requestID uuid.UUID, in StandardizeRequestInput) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, request.ActionStandardize,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			active, err := req.ActiveVersion()
			if err != nil {
				return err
			}
			lote := strings.TrimSpace(in.LoteNumber)
			if lote == "" && active.LoteNumber == "" {
				year := s.now().Year()
				latest, err := repos.RequestRepo().LatestLoteNumber(ctx, year)
				if err != nil {
					return err
				}
				lote = request.NextLoteNumber(year, latest)
			}
			v, err := req.Standardize(request.StandardizeInput{
				LoteNumber:         lote,
				PlannedPaymentDate: in.PlannedPaymentDate,
				Notes:              in.Notes,
			})
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().SaveVersionDetails(ctx, v); err != nil {
				return err
			}
			return repos.RequestRepo().SaveState(ctx, req)
		})
}

// CreateCorrection forks the active version into a new one
func (s *WorkflowService) CreateCorrection(ctx context.Context, actorID, requestID uuid.UUID, in CreateCorrectionInput) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, request.ActionCreateCorrection,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			next, resolved, err := req.Fork(request.CorrectionInput{
				LoteNumber:         in.LoteNumber,
				PlannedPaymentDate: in.PlannedPaymentDate,
				Notes:              in.Notes,
			}, actor.UserID, s.now())
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().AppendVersion(ctx, req, next); err != nil {
				return err
			}
			for _, c := range resolved {
				if err := repos.RequestRepo().SaveCorrectionRequest(ctx, c); err != nil {
					return err
				}
			}
			return nil
		})
}

// Sign records the area chief signature
func (s *WorkflowService) Sign(ctx context.Context, actorID, requestID uuid.UUID) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, request.ActionSign,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			sig, err := req.Sign(actor.UserID, s.now())
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().SaveSignature(ctx, sig); err != nil {
				return err
			}
			return repos.RequestRepo().SaveState(ctx, req)
		})
}

// MarkPaid records the treasury payment. Repeating it updates the payment.
func (s *WorkflowService) MarkPaid(ctx context.Context, actorID, requestID uuid.UUID, in MarkPaidInput) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, request.ActionMarkPaid,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			p, err := req.MarkPaid(request.PaymentInput{
				PaidAt:           in.PaidAt,
				PaymentReference: in.PaymentReference,
				Notes:            in.Notes,
			}, actor.UserID, s.now())
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().SavePayment(ctx, p); err != nil {
				return err
			}
			return repos.RequestRepo().SaveState(ctx, req)
		})
}

// RequestCorrection returns the request from treasury to administration
func (s *WorkflowService) RequestCorrection(ctx context.Context, actorID, requestID uuid.UUID, in RequestCorrectionInput) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, request.ActionRequestCorrection,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			c, err := req.RequestCorrection(in.Reason, in.SuggestedPaymentDate, actor.UserID, s.now())
			if err != nil {
				return err
			}
			if err := repos.RequestRepo().SaveCorrectionRequest(ctx, c); err != nil {
				return err
			}
			return repos.RequestRepo().SaveState(ctx, req)
		})
}

type transitionFunc func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error

// simple handles actions that only change the status
func (s *WorkflowService) simple(ctx context.Context, actorID, requestID uuid.UUID, action request.Action, apply func(*request.ViaticRequest) error) (*RequestResponse, error) {
	return s.transition(ctx, actorID, requestID, action,
		func(ctx context.Context, repos TransactionalRepositories, req *request.ViaticRequest, actor identity.Actor) error {
			if err := apply(req); err != nil {
				return err
			}
			return repos.RequestRepo().SaveState(ctx, req)
		})
}

func (s *WorkflowService) transition(ctx context.Context, actorID, requestID uuid.UUID, action request.Action, fn transitionFunc) (*RequestResponse, error) {
	actor, err := s.resolver.Resolve(ctx, actorID, request.RolesFor(action)...)
	if err != nil {
		return nil, err
	}

	var updated *request.ViaticRequest
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		req, err := repos.RequestRepo().FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := fn(ctx, repos, req, actor); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		s.logger.Warn("Workflow action rejected",
			zap.String("request_id", requestID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Workflow action applied",
		zap.String("request_id", updated.ID.String()),
		zap.String("action", string(action)),
		zap.String("status", string(updated.Status)),
		zap.Int("version_number", updated.CurrentVersionNumber))
	s.audit.record(ctx, requestEvent(updated, action, actor.UserID))

	resp := ToRequestResponse(updated)
	return &resp, nil
}
