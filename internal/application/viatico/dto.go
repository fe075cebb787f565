package viatico

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/domain/workforce"
)

// RateResponse represents a rate history entry in API responses
type RateResponse struct {
	ID            uuid.UUID        `json:"id"`
	EffectiveFrom valueobject.Date `json:"effective_from"`
	Amount        decimal.Decimal  `json:"amount"`
	Note          string           `json:"note,omitempty"`
	CreatedBy     uuid.UUID        `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EffectiveRateResponse is the rate in force on a date
type EffectiveRateResponse struct {
	AsOf          valueobject.Date `json:"as_of"`
	Amount        decimal.Decimal  `json:"amount"`
	EffectiveFrom valueobject.Date `json:"effective_from"`
	RateID        *uuid.UUID       `json:"rate_id,omitempty"`
	IsDefault     bool             `json:"is_default"`
}

// SetRateResponse is the outcome of registering a new rate
type SetRateResponse struct {
	Rate     RateResponse   `json:"rate"`
	Previous *RateResponse  `json:"previous,omitempty"`
	Batch    *BatchResponse `json:"batch,omitempty"`
}

// BatchItemResponse represents a retroactive adjustment item
type BatchItemResponse struct {
	ID           uuid.UUID         `json:"id"`
	WorkerID     uuid.UUID         `json:"worker_id"`
	DaysAffected decimal.Decimal   `json:"days_affected"`
	AmountDiff   decimal.Decimal   `json:"amount_diff"`
	Status       adjustment.Status `json:"status"`
}

// BatchResponse represents a retroactive adjustment batch
type BatchResponse struct {
	ID            uuid.UUID           `json:"id"`
	PeriodMonth   string              `json:"period_month"`
	EffectiveFrom valueobject.Date    `json:"effective_from"`
	OldAmount     decimal.Decimal     `json:"old_amount"`
	NewAmount     decimal.Decimal     `json:"new_amount"`
	RateEntryID   uuid.UUID           `json:"rate_entry_id"`
	Status        adjustment.Status   `json:"status"`
	TotalDiff     decimal.Decimal     `json:"total_diff"`
	AppliedAt     *time.Time          `json:"applied_at,omitempty"`
	AppliedBy     *uuid.UUID          `json:"applied_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []BatchItemResponse `json:"items"`
}

// LineItemResponse represents a worker line of a version
type LineItemResponse struct {
	ID                   uuid.UUID       `json:"id"`
	WorkerID             uuid.UUID       `json:"worker_id"`
	DaysCount            decimal.Decimal `json:"days_count"`
	DailyAmount          decimal.Decimal `json:"daily_amount"`
	GrossAmount          decimal.Decimal `json:"gross_amount"`
	BalanceAppliedAmount decimal.Decimal `json:"balance_applied_amount"`
	NetAmount            decimal.Decimal `json:"net_amount"`
}

// DayConceptResponse represents a day concept
type DayConceptResponse struct {
	Date        valueobject.Date `json:"date"`
	ConceptText string           `json:"concept_text"`
}

// SignatureResponse represents a version signature
type SignatureResponse struct {
	SignedBy uuid.UUID `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
	Method   string    `json:"method"`
	DocHash  string    `json:"doc_hash"`
}

// PaymentResponse represents a treasury payment
type PaymentResponse struct {
	PaidAt           time.Time `json:"paid_at"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        uuid.UUID `json:"created_by"`
}

// CorrectionResponse represents a treasury correction request
type CorrectionResponse struct {
	ID                   uuid.UUID                `json:"id"`
	Reason               string                   `json:"reason"`
	SuggestedPaymentDate valueobject.Date         `json:"suggested_payment_date"`
	Status               request.CorrectionStatus `json:"status"`
	CreatedBy            uuid.UUID                `json:"created_by"`
	CreatedAt            time.Time                `json:"created_at"`
	ResolvedAt           *time.Time               `json:"resolved_at,omitempty"`
}

// VersionResponse represents one version of a request
type VersionResponse struct {
	ID                 uuid.UUID            `json:"id"`
	VersionNumber      int                  `json:"version_number"`
	Active             bool                 `json:"active"`
	StartDate          valueobject.Date     `json:"start_date"`
	EndDate            valueobject.Date     `json:"end_date"`
	PlannedPaymentDate valueobject.Date     `json:"planned_payment_date"`
	LoteNumber         string               `json:"lote_number,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	Plan               request.DayPlan      `json:"plan"`
	TotalNet           decimal.Decimal      `json:"total_net"`
	Workers            []LineItemResponse   `json:"workers"`
	DayConcepts        []DayConceptResponse `json:"day_concepts"`
	Signature          *SignatureResponse   `json:"signature,omitempty"`
	Payment            *PaymentResponse     `json:"payment,omitempty"`
	Corrections        []CorrectionResponse `json:"corrections,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// RequestResponse represents a request with its full version history
type RequestResponse struct {
	ID                   uuid.UUID         `json:"id"`
	RequestNumber        string            `json:"request_number"`
	AreaID               uuid.UUID         `json:"area_id"`
	CreatedBy            uuid.UUID         `json:"created_by"`
	Status               request.Status    `json:"status"`
	StatusLabel          string            `json:"status_label"`
	CurrentVersionNumber int               `json:"current_version_number"`
	Version              int               `json:"version"`
	Versions             []VersionResponse `json:"versions"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// RequestListItemResponse represents a request in list views
type RequestListItemResponse struct {
	ID                   uuid.UUID      `json:"id"`
	RequestNumber        string         `json:"request_number"`
	AreaID               uuid.UUID      `json:"area_id"`
	Status               request.Status `json:"status"`
	StatusLabel          string         `json:"status_label"`
	CurrentVersionNumber int            `json:"current_version_number"`
	CreatedAt            time.Time      `json:"created_at"`
}

// LegResponse represents a rendition leg
type LegResponse struct {
	OrderIndex        int              `json:"order_index"`
	DepartureLocation string           `json:"departure_location"`
	ArrivalLocation   string           `json:"arrival_location"`
	DepartureAt       *time.Time       `json:"departure_at,omitempty"`
	ArrivalAt         *time.Time       `json:"arrival_at,omitempty"`
	DepartureKm       *decimal.Decimal `json:"departure_km,omitempty"`
	ArrivalKm         *decimal.Decimal `json:"arrival_km,omitempty"`
}

// RenditionResponse represents a rendition
type RenditionResponse struct {
	ID               uuid.UUID        `json:"id"`
	RequestWorkerID  uuid.UUID        `json:"request_worker_id"`
	RequestVersionID uuid.UUID        `json:"request_version_id"`
	WorkerID         uuid.UUID        `json:"worker_id"`
	Reason           string           `json:"reason,omitempty"`
	VehiclePlate     string           `json:"vehicle_plate,omitempty"`
	AttachmentURL    string           `json:"attachment_url,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	ConsumedViaticos *decimal.Decimal `json:"consumed_viaticos"`
	UnusedDays       decimal.Decimal  `json:"unused_days"`
	BalanceDebt      decimal.Decimal  `json:"balance_debt"`
	Legs             []LegResponse    `json:"legs"`
}

// BulkRenditionResponse is the outcome of a bulk rendition
type BulkRenditionResponse struct {
	Renditions   []RenditionResponse `json:"renditions"`
	BalanceCount int                 `json:"balance_count"`
}

// LedgerEntryResponse represents a ledger entry
type LedgerEntryResponse struct {
	ID                      uuid.UUID        `json:"id"`
	WorkerID                uuid.UUID        `json:"worker_id"`
	Type                    ledger.EntryType `json:"type"`
	Amount                  decimal.Decimal  `json:"amount"`
	Purpose                 ledger.Purpose   `json:"purpose"`
	SourceID                uuid.UUID        `json:"source_id"`
	RelatedRequestVersionID *uuid.UUID       `json:"related_request_version_id,omitempty"`
	Reason                  string           `json:"reason"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// WorkerBalanceResponse is the running balance of a worker
type WorkerBalanceResponse struct {
	WorkerID uuid.UUID       `json:"worker_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// WorkerResponse represents a worker
type WorkerResponse struct {
	ID        uuid.UUID              `json:"id"`
	Legajo    string                 `json:"legajo"`
	Name      string                 `json:"name"`
	DNI       string                 `json:"dni,omitempty"`
	CBU       string                 `json:"cbu,omitempty"`
	Bank      string                 `json:"bank,omitempty"`
	Province  string                 `json:"province,omitempty"`
	Status    workforce.WorkerStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// AreaResponse represents an area
type AreaResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserResponse represents a user
type UserResponse struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  identity.Role `json:"role"`
}

// ToRateResponse converts a rate entry to a response
func ToRateResponse(e *rate.Entry) RateResponse {
	return RateResponse{
		ID:            e.ID,
		EffectiveFrom: e.EffectiveFrom,
		Amount:        e.Amount,
		Note:          e.Note,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}

// ToBatchResponse converts a batch to a response
func ToBatchResponse(b *adjustment.Batch) BatchResponse {
	items := make([]BatchItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BatchItemResponse{
			ID:           it.ID,
			WorkerID:     it.WorkerID,
			DaysAffected: it.DaysAffected,
			AmountDiff:   it.AmountDiff,
			Status:       it.Status,
		})
	}
	return BatchResponse{
		ID:            b.ID,
		PeriodMonth:   b.PeriodMonth,
		EffectiveFrom: b.EffectiveFrom,
		OldAmount:     b.OldAmount,
		NewAmount:     b.NewAmount,
		RateEntryID:   b.RateEntryID,
		Status:        b.Status,
		TotalDiff:     b.TotalDiff(),
		AppliedAt:     b.AppliedAt,
		AppliedBy:     b.AppliedBy,
		CreatedAt:     b.CreatedAt,
		Items:         items,
	}
}

// ToRequestResponse converts a request aggregate to a response
func ToRequestResponse(r *request.ViaticRequest) RequestResponse {
	versions := make([]VersionResponse, 0, len(r.Versions))
	for _, v := range r.Versions {
		versions = append(versions, toVersionResponse(v, v.VersionNumber == r.CurrentVersionNumber))
	}
	return RequestResponse{
		ID:                   r.ID,
		RequestNumber:        r.RequestNumber,
		AreaID:               r.AreaID,
		CreatedBy:            r.CreatedBy,
		Status:               r.Status,
		StatusLabel:          r.Status.Label(),
		CurrentVersionNumber: r.CurrentVersionNumber,
		Version:              r.GetVersion(),
		Versions:             versions,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// ToRequestListItemResponse converts a request to a list item
func ToRequestListItemResponse(r *request.ViaticRequest) RequestListItemResponse {
	return RequestListItemResponse{
		ID:                   r.ID,
		RequestNumber:        r.RequestNumber,
		AreaID:               r.AreaID,
		Status:               r.Status,
		StatusLabel:          r.Status.Label(),
		CurrentVersionNumber: r.CurrentVersionNumber,
		CreatedAt:            r.CreatedAt,
	}
}

func toVersionResponse(v *request.Version, active bool) VersionResponse {
	resp := VersionResponse{
		ID:                 v.ID,
		VersionNumber:      v.VersionNumber,
		Active:             active,
		StartDate:          v.StartDate,
		EndDate:            v.EndDate,
		PlannedPaymentDate: v.PlannedPaymentDate,
		LoteNumber:         v.LoteNumber,
		Notes:              v.Notes,
		Plan:               v.Plan,
		TotalNet:           v.TotalNet(),
		Workers:            make([]LineItemResponse, 0, len(v.Workers)),
		DayConcepts:        make([]DayConceptResponse, 0, len(v.DayConcepts)),
		CreatedAt:          v.CreatedAt,
	}
	for _, w := range v.Workers {
		resp.Workers = append(resp.Workers, LineItemResponse{
			ID:                   w.ID,
			WorkerID:             w.WorkerID,
			DaysCount:            w.DaysCount,
			DailyAmount:          w.DailyAmount,
			GrossAmount:          w.GrossAmount,
			BalanceAppliedAmount: w.BalanceAppliedAmount,
			NetAmount:            w.NetAmount,
		})
	}
	for _, c := range v.DayConcepts {
		resp.DayConcepts = append(resp.DayConcepts, DayConceptResponse{Date: c.Date, ConceptText: c.ConceptText})
	}
	if s := v.Signature; s != nil {
		resp.Signature = &SignatureResponse{SignedBy: s.SignedBy, SignedAt: s.SignedAt, Method: s.Method, DocHash: s.DocHash}
	}
	if p := v.Payment; p != nil {
		resp.Payment = &PaymentResponse{PaidAt: p.PaidAt, PaymentReference: p.PaymentReference, Notes: p.Notes, CreatedBy: p.CreatedBy}
	}
	for _, c := range v.Corrections {
		resp.Corrections = append(resp.Corrections, CorrectionResponse{
			ID:                   c.ID,
			Reason:               c.Reason,
			SuggestedPaymentDate: c.SuggestedPaymentDate,
			Status:               c.Status,
			CreatedBy:            c.CreatedBy,
			CreatedAt:            c.CreatedAt,
			ResolvedAt:           c.ResolvedAt,
		})
	}
	return resp
}

// ToRenditionResponse converts a rendition and its balance decision to a response
func ToRenditionResponse(r *rendition.Rendition, decision rendition.BalanceDecision) RenditionResponse {
	legs := make([]LegResponse, 0, len(r.Legs))
	for _, l := range r.Legs {
		legs = append(legs, LegResponse{
			OrderIndex:        l.OrderIndex,
			DepartureLocation: l.DepartureLocation,
			ArrivalLocation:   l.ArrivalLocation,
			DepartureAt:       l.DepartureAt,
			ArrivalAt:         l.ArrivalAt,
			DepartureKm:       l.DepartureKm,
			ArrivalKm:         l.ArrivalKm,
		})
	}
	return RenditionResponse{
		ID:               r.ID,
		RequestWorkerID:  r.RequestWorkerID,
		RequestVersionID: r.RequestVersionID,
		WorkerID:         r.WorkerID,
		Reason:           r.Reason,
		VehiclePlate:     r.VehiclePlate,
		AttachmentURL:    r.AttachmentURL,
		Notes:            r.Notes,
		ConsumedViaticos: r.ConsumedViaticos,
		UnusedDays:       decision.UnusedDays,
		BalanceDebt:      decision.Amount,
		Legs:             legs,
	}
}

// ToLedgerEntryResponse converts a ledger entry to a response
func ToLedgerEntryResponse(e *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                      e.ID,
		WorkerID:                e.WorkerID,
		Type:                    e.Type,
		Amount:                  e.Amount,
		Purpose:                 e.Purpose,
		SourceID:                e.SourceID,
		RelatedRequestVersionID: e.RelatedRequestVersionID,
		Reason:                  e.Reason,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

// ToWorkerResponse converts a worker to a response
func ToWorkerResponse(w *workforce.Worker) WorkerResponse {
	return WorkerResponse{
		ID:        w.ID,
		Legajo:    w.Legajo,
		Name:      w.Name,
		DNI:       w.DNI,
		CBU:       w.CBU,
		Bank:      w.Bank,
		Province:  w.Province,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
	}
}

// ToAreaResponse converts an area to a response
func ToAreaResponse(a *workforce.Area) AreaResponse {
	return AreaResponse{ID: a.ID, Name: a.Name}
}

// ToUserResponse converts a user to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
