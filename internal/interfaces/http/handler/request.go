package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/interfaces/http/dto"
)

// RequestHandler handles viatic requests and their workflow actions
type RequestHandler struct {
	BaseHandler
	requests *appviatico.RequestService
	workflow *appviatico.WorkflowService
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(requests *appviatico.RequestService, workflow *appviatico.WorkflowService) *RequestHandler {
	return &RequestHandler{requests: requests, workflow: workflow}
}

// WorkerAllocationRequest selects a worker. Days overrides the count
// derived from the day plan.
type WorkerAllocationRequest struct {
	WorkerID uuid.UUID        `json:"worker_id" binding:"required"`
	Days     *decimal.Decimal `json:"days" binding:"omitempty,halfstep"`
}

// CreateRequestRequest is the body of POST /requests
type CreateRequestRequest struct {
	AreaName  string                    `json:"area_name" binding:"max=200"`
	StartDate valueobject.Date          `json:"start_date" binding:"required"`
	EndDate   valueobject.Date          `json:"end_date" binding:"required"`
	Notes     string                    `json:"notes" binding:"max=2000"`
	Draft     bool                      `json:"draft"`
	Plan      request.DayPlan           `json:"plan"`
	Workers   []WorkerAllocationRequest `json:"workers" binding:"required,min=1,dive"`
}

// ListRequestsQuery filters the request listing
type ListRequestsQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,max=32"`
	AreaID string `form:"area_id" binding:"omitempty,uuid"`
}

// StandardizeRequest carries the administrative fields of a version
type StandardizeRequest struct {
	LoteNumber         string           `json:"lote_number" binding:"max=50"`
	PlannedPaymentDate valueobject.Date `json:"planned_payment_date"`
	Notes              string           `json:"notes" binding:"max=2000"`
}

// MarkPaidRequest records a treasury payment
type MarkPaidRequest struct {
	PaidAt           time.Time `json:"paid_at"`
	PaymentReference string    `json:"payment_reference" binding:"max=100"`
	Notes            string    `json:"notes" binding:"max=2000"`
}

// CorrectionRequestRequest returns a request from treasury. An empty
// reason gets the default text.
type CorrectionRequestRequest struct {
	Reason               string           `json:"reason" binding:"max=2000"`
	SuggestedPaymentDate valueobject.Date `json:"suggested_payment_date"`
}

// Create opens a new request
func (h *RequestHandler) Create(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req CreateRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	workers := make([]request.WorkerAllocation, 0, len(req.Workers))
	for _, w := range req.Workers {
		workers = append(workers, request.WorkerAllocation{WorkerID: w.WorkerID, Days: w.Days})
	}
	resp, err := h.requests.CreateRequest(c.Request.Context(), actorID, appviatico.CreateRequestInput{
		AreaName:  req.AreaName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
		Draft:     req.Draft,
		Plan:      req.Plan,
		Workers:   workers,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a request with all of its versions
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a page of requests
func (h *RequestHandler) List(c *gin.Context) {
	var q ListRequestsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	filter := request.ListFilter{Filter: shared.DefaultFilter()}
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	if q.Status != "" {
		status := request.Status(q.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown status "+q.Status)
			return
		}
		filter.Status = &status
	}
	if q.AreaID != "" {
		areaID := uuid.MustParse(q.AreaID)
		filter.AreaID = &areaID
	}

	page, err := h.requests.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

type workflowAction func(ctx context.Context, actorID, requestID uuid.UUID) (*appviatico.RequestResponse, error)

// run resolves actor and request id, binds body when not nil, then
// applies a workflow action. Every action body is optional.
func (h *RequestHandler) run(c *gin.Context, body any, action workflowAction) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if body != nil && c.Request.ContentLength != 0 && !h.bindJSON(c, body) {
		return
	}
	resp, err := action(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit sends a draft to administration
func (h *RequestHandler) Submit(c *gin.Context) { h.run(c, nil, h.workflow.Submit) }

// BeginReview opens the administrative review
func (h *RequestHandler) BeginReview(c *gin.Context) { h.run(c, nil, h.workflow.BeginReview) }

// BeginCorrection takes a returned request into correction
func (h *RequestHandler) BeginCorrection(c *gin.Context) { h.run(c, nil, h.workflow.BeginCorrection) }

// Sign records the area chief signature
func (h *RequestHandler) Sign(c *gin.Context) { h.run(c, nil, h.workflow.Sign) }

// Cancel cancels a request that is not paid yet
func (h *RequestHandler) Cancel(c *gin.Context) { h.run(c, nil, h.workflow.Cancel) }

// Standardize writes lote and planned payment date and moves to signature
func (h *RequestHandler) Standardize(c *gin.Context) {
	var req StandardizeRequest
	h.run(c, &req, func(ctx context.Context, actorID, id uuid.UUID) (*appviatico.RequestResponse, error) {
		return h.workflow.Standardize(ctx, actorID, id, appviatico.StandardizeRequestInput{
			LoteNumber:         req.LoteNumber,
			PlannedPaymentDate: req.PlannedPaymentDate,
			Notes:              req.Notes,
		})
	})
}

// CreateCorrection forks the active version
func (h *RequestHandler) CreateCorrection(c *gin.Context) {
	var req StandardizeRequest
	h.run(c, &req, func(ctx context.Context, actorID, id uuid.UUID) (*appviatico.RequestResponse, error) {
		return h.workflow.CreateCorrection(ctx, actorID, id, appviatico.CreateCorrectionInput{
			LoteNumber:         req.LoteNumber,
			PlannedPaymentDate: req.PlannedPaymentDate,
			Notes:              req.Notes,
		})
	})
}

// MarkPaid records the payment
func (h *RequestHandler) MarkPaid(c *gin.Context) {
	var req MarkPaidRequest
	h.run(c, &req, func(ctx context.Context, actorID, id uuid.UUID) (*appviatico.RequestResponse, error) {
		return h.workflow.MarkPaid(ctx, actorID, id, appviatico.MarkPaidInput{
			PaidAt:           req.PaidAt,
			PaymentReference: req.PaymentReference,
			Notes:            req.Notes,
		})
	})
}

// RequestCorrection returns the request to administration
func (h *RequestHandler) RequestCorrection(c *gin.Context) {
	var req CorrectionRequestRequest
	h.run(c, &req, func(ctx context.Context, actorID, id uuid.UUID) (*appviatico.RequestResponse, error) {
		return h.workflow.RequestCorrection(ctx, actorID, id, appviatico.RequestCorrectionInput{
			Reason:               req.Reason,
			SuggestedPaymentDate: req.SuggestedPaymentDate,
		})
	})
}
