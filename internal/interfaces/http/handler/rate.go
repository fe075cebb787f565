package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
)

// RateHandler handles the daily rate timeline and its adjustment batches
type RateHandler struct {
	BaseHandler
	rates       *appviatico.RateService
	adjustments *appviatico.AdjustmentService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rates *appviatico.RateService, adjustments *appviatico.AdjustmentService) *RateHandler {
	return &RateHandler{rates: rates, adjustments: adjustments}
}

// SetRateRequest registers a new daily amount
type SetRateRequest struct {
	EffectiveFrom valueobject.Date `json:"effective_from" binding:"required"`
	Amount        decimal.Decimal  `json:"amount" binding:"positive"`
	Note          string           `json:"note" binding:"max=500"`
}

// CurrentRateQuery selects the date to resolve the rate at
type CurrentRateQuery struct {
	AsOf string `form:"as_of" binding:"omitempty,datetime=2006-01-02"`
}

// ListBatchesQuery filters adjustment batches
type ListBatchesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT APPLIED"`
}

// SetRate appends a rate and returns the retroactive batch, if any
func (h *RateHandler) SetRate(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req SetRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.rates.SetRate(c.Request.Context(), actorID, appviatico.SetRateInput{
		EffectiveFrom: req.EffectiveFrom,
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListRates returns the full timeline
func (h *RateHandler) ListRates(c *gin.Context) {
	rates, err := h.rates.ListRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// CurrentRate resolves the amount in force at as_of, today by default
func (h *RateHandler) CurrentRate(c *gin.Context) {
	var q CurrentRateQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var asOf valueobject.Date
	if q.AsOf != "" {
		asOf = valueobject.MustParseDate(q.AsOf)
	}

	resp, err := h.rates.CurrentRate(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyBatch posts the ledger credits of a DRAFT batch
func (h *RateHandler) ApplyBatch(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	batchID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.adjustments.ApplyBatch(c.Request.Context(), actorID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetBatch returns one batch with its items
func (h *RateHandler) GetBatch(c *gin.Context) {
	batchID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.adjustments.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBatches lists batches, newest first
func (h *RateHandler) ListBatches(c *gin.Context) {
	var q ListBatchesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var status *adjustment.Status
	if q.Status != "" {
		s := adjustment.Status(q.Status)
		status = &s
	}

	batches, err := h.adjustments.ListBatches(c.Request.Context(), status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}
