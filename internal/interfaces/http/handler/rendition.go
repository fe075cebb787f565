package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/rendition"
)

// RenditionHandler handles expense renditions of request lines
type RenditionHandler struct {
	BaseHandler
	renditions *appviatico.RenditionService
}

// NewRenditionHandler creates a new RenditionHandler
func NewRenditionHandler(renditions *appviatico.RenditionService) *RenditionHandler {
	return &RenditionHandler{renditions: renditions}
}

// LegRequest is one trip leg. Fully empty legs are dropped.
type LegRequest struct {
	OrderIndex        int              `json:"order_index" binding:"min=0"`
	DepartureLocation string           `json:"departure_location" binding:"max=200"`
	ArrivalLocation   string           `json:"arrival_location" binding:"max=200"`
	DepartureAt       *time.Time       `json:"departure_at"`
	ArrivalAt         *time.Time       `json:"arrival_at"`
	DepartureKm       *decimal.Decimal `json:"departure_km"`
	ArrivalKm         *decimal.Decimal `json:"arrival_km"`
}

// RenditionRequest replaces the rendition of a line
type RenditionRequest struct {
	Reason           string           `json:"reason" binding:"max=2000"`
	VehiclePlate     string           `json:"vehicle_plate" binding:"max=20"`
	AttachmentURL    string           `json:"attachment_url" binding:"omitempty,url,max=1000"`
	Notes            string           `json:"notes" binding:"max=2000"`
	ConsumedViaticos *decimal.Decimal `json:"consumed_viaticos" binding:"omitempty,halfstep"`
	Legs             []LegRequest     `json:"legs" binding:"max=50,dive"`
}

// BulkRenditionRequest applies one rendition to several lines
type BulkRenditionRequest struct {
	RenditionRequest
	RequestWorkerIDs []uuid.UUID `json:"request_worker_ids" binding:"required,min=1,max=200"`
}

func (r RenditionRequest) toInput() rendition.Input {
	legs := make([]rendition.Leg, 0, len(r.Legs))
	for _, l := range r.Legs {
		legs = append(legs, rendition.Leg{
			OrderIndex:        l.OrderIndex,
			DepartureLocation: l.DepartureLocation,
			ArrivalLocation:   l.ArrivalLocation,
			DepartureAt:       l.DepartureAt,
			ArrivalAt:         l.ArrivalAt,
			DepartureKm:       l.DepartureKm,
			ArrivalKm:         l.ArrivalKm,
		})
	}
	return rendition.Input{
		Reason:           r.Reason,
		VehiclePlate:     r.VehiclePlate,
		AttachmentURL:    r.AttachmentURL,
		Notes:            r.Notes,
		ConsumedViaticos: r.ConsumedViaticos,
		Legs:             legs,
	}
}

// Upsert stores the rendition of one request line
func (h *RenditionHandler) Upsert(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "request_worker_id")
	if !ok {
		return
	}
	var req RenditionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.renditions.UpsertRendition(c.Request.Context(), actorID, lineID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpsertBulk stores the same rendition on every listed line, all or none
func (h *RenditionHandler) UpsertBulk(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req BulkRenditionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.renditions.UpsertRenditionBulk(c.Request.Context(), actorID, req.RequestWorkerIDs, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
