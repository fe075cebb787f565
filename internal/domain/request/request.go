package request

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/blake2b"
)

// Defaults applied when the caller leaves a field blank
const (
	DefaultCorrectionNotes  = "Correccion solicitada"
	DefaultCorrectionReason = "Banco no habil"
	// SuggestedPaymentDelayDays is added to today when treasury gives no date
	SuggestedPaymentDelayDays = 2
)

// ViaticRequest is the aggregate root of a per-diem request.
// Versions are kept ordered by number; the active one is CurrentVersionNumber.
type ViaticRequest struct {
	shared.BaseAggregateRoot
	RequestNumber        string
	AreaID               uuid.UUID
	CreatedBy            uuid.UUID
	Status               Status
	CurrentVersionNumber int
	Versions             []*Version
}

// NewViaticRequest opens a request with its first version
func NewViaticRequest(number string, areaID, createdBy uuid.UUID, draft bool, first *Version) (*ViaticRequest, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Request number is required")
	}
	if first == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Request requires a first version")
	}
	if len(first.Workers) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Request requires at least one worker")
	}
	status := StatusSubmittedToAdmin
	if draft {
		status = StatusDraft
	}
	r := &ViaticRequest{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		RequestNumber:        number,
		AreaID:               areaID,
		CreatedBy:            createdBy,
		Status:               status,
		CurrentVersionNumber: 1,
	}
	first.RequestID = r.ID
	first.VersionNumber = 1
	r.Versions = []*Version{first}
	return r, nil
}

// ActiveVersion returns the version the request currently points to
func (r *ViaticRequest) ActiveVersion() (*Version, error) {
	for _, v := range r.Versions {
		if v.VersionNumber == r.CurrentVersionNumber {
			return v, nil
		}
	}
	return nil, shared.NewDomainError(shared.CodeNotFound,
		fmt.Sprintf("Version %d of request %s not found", r.CurrentVersionNumber, r.RequestNumber))
}

// FindVersion returns the version with the given number
func (r *ViaticRequest) FindVersion(number int) (*Version, bool) {
	for _, v := range r.Versions {
		if v.VersionNumber == number {
			return v, true
		}
	}
	return nil, false
}

// advance moves the request to the state of action, bumping the lock counter
func (r *ViaticRequest) advance(action Action) error {
	next, err := NextStatus(action, r.Status)
	if err != nil {
		return err
	}
	r.Status = next
	r.IncrementVersion()
	r.Touch()
	return nil
}

// guard validates the action and returns the active version without mutating
func (r *ViaticRequest) guard(action Action) (*Version, error) {
	if _, err := NextStatus(action, r.Status); err != nil {
		return nil, err
	}
	return r.ActiveVersion()
}

// Submit sends a draft to administration
func (r *ViaticRequest) Submit() error {
	return r.advance(ActionSubmit)
}

// BeginReview marks the request as being reviewed
func (r *ViaticRequest) BeginReview() error {
	return r.advance(ActionBeginReview)
}

// BeginCorrection marks a returned request as being corrected
func (r *ViaticRequest) BeginCorrection() error {
	return r.advance(ActionBeginCorrection)
}

// Cancel voids the request
func (r *ViaticRequest) Cancel() error {
	return r.advance(ActionCancel)
}

// StandardizeInput holds the administrative fields; blanks keep the previous value
type StandardizeInput struct {
	LoteNumber         string
	PlannedPaymentDate valueobject.Date
	Notes              string
}

// Standardize writes lote, planned date and notes on the active version
func (r *ViaticRequest) Standardize(in StandardizeInput) (*Version, error) {
	v, err := r.guard(ActionStandardize)
	if err != nil {
		return nil, err
	}
	if lote := strings.TrimSpace(in.LoteNumber); lote != "" {
		v.LoteNumber = lote
	}
	if !in.PlannedPaymentDate.IsZero() {
		v.PlannedPaymentDate = in.PlannedPaymentDate
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		v.Notes = notes
	}
	v.Touch()
	if err := r.advance(ActionStandardize); err != nil {
		return nil, err
	}
	return v, nil
}

// CorrectionInput overrides fields of the forked version
type CorrectionInput struct {
	LoteNumber         string
	PlannedPaymentDate valueobject.Date
	Notes              string
}

// Fork creates version N+1 as a verbatim copy of the active version and
// resolves the open correction requests of version N. It returns the new
// version and the correction requests it resolved.
func (r *ViaticRequest) Fork(in CorrectionInput, createdBy uuid.UUID, now time.Time) (*Version, []*CorrectionRequest, error) {
	active, err := r.guard(ActionCreateCorrection)
	if err != nil {
		return nil, nil, err
	}
	open := active.OpenCorrections()

	next := active.fork(createdBy)
	switch {
	case !in.PlannedPaymentDate.IsZero():
		next.PlannedPaymentDate = in.PlannedPaymentDate
	case len(open) > 0 && !open[0].SuggestedPaymentDate.IsZero():
		next.PlannedPaymentDate = open[0].SuggestedPaymentDate
	}
	if lote := strings.TrimSpace(in.LoteNumber); lote != "" {
		next.LoteNumber = lote
	}
	next.Notes = strings.TrimSpace(in.Notes)
	if next.Notes == "" {
		next.Notes = DefaultCorrectionNotes
	}

	for _, c := range open {
		c.Resolve(now)
	}
	r.Versions = append(r.Versions, next)
	r.CurrentVersionNumber = next.VersionNumber
	if err := r.advance(ActionCreateCorrection); err != nil {
		return nil, nil, err
	}
	return next, open, nil
}

// Sign records the supervisor signature on the active version
func (r *ViaticRequest) Sign(signer uuid.UUID, now time.Time) (*Signature, error) {
	v, err := r.guard(ActionSign)
	if err != nil {
		return nil, err
	}
	hash, err := DocumentHash(r, v)
	if err != nil {
		return nil, err
	}
	if v.Signature == nil {
		v.Signature = &Signature{ID: uuid.New(), VersionID: v.ID}
	}
	v.Signature.SignedBy = signer
	v.Signature.SignedAt = now
	v.Signature.Method = SignatureMethodPIN
	v.Signature.DocHash = hash
	if err := r.advance(ActionSign); err != nil {
		return nil, err
	}
	return v.Signature, nil
}

// PaymentInput describes a treasury payment; a zero PaidAt means now
type PaymentInput struct {
	PaidAt           time.Time
	PaymentReference string
	Notes            string
}

// MarkPaid records or updates the payment of the active version
func (r *ViaticRequest) MarkPaid(in PaymentInput, by uuid.UUID, now time.Time) (*TreasuryPayment, error) {
	v, err := r.guard(ActionMarkPaid)
	if err != nil {
		return nil, err
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	if v.Payment == nil {
		v.Payment = &TreasuryPayment{ID: uuid.New(), VersionID: v.ID, CreatedBy: by}
	}
	v.Payment.PaidAt = paidAt
	v.Payment.PaymentReference = strings.TrimSpace(in.PaymentReference)
	v.Payment.Notes = strings.TrimSpace(in.Notes)
	if err := r.advance(ActionMarkPaid); err != nil {
		return nil, err
	}
	return v.Payment, nil
}

// RequestCorrection opens a correction request on the active version
func (r *ViaticRequest) RequestCorrection(reason string, suggested valueobject.Date, by uuid.UUID, now time.Time) (*CorrectionRequest, error) {
	v, err := r.guard(ActionRequestCorrection)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCorrectionReason
	}
	if suggested.IsZero() {
		suggested = valueobject.DateOf(now).AddDays(SuggestedPaymentDelayDays)
	}
	c := &CorrectionRequest{
		ID:                   uuid.New(),
		VersionID:            v.ID,
		Reason:               reason,
		SuggestedPaymentDate: suggested,
		Status:               CorrectionOpen,
		CreatedBy:            by,
		CreatedAt:            now,
	}
	v.Corrections = append(v.Corrections, c)
	if err := r.advance(ActionRequestCorrection); err != nil {
		return nil, err
	}
	return c, nil
}

type snapshotLine struct {
	WorkerID    uuid.UUID `json:"worker_id"`
	Days        string    `json:"days"`
	DailyAmount string    `json:"daily_amount"`
	NetAmount   string    `json:"net_amount"`
}

type snapshot struct {
	RequestNumber      string         `json:"request_number"`
	VersionNumber      int            `json:"version_number"`
	StartDate          string         `json:"start_date"`
	EndDate            string         `json:"end_date"`
	PlannedPaymentDate string         `json:"planned_payment_date"`
	LoteNumber         string         `json:"lote_number"`
	Lines              []snapshotLine `json:"lines"`
}

// DocumentHash returns the hex BLAKE2b-256 digest of the signed content
func DocumentHash(r *ViaticRequest, v *Version) (string, error) {
	s := snapshot{
		RequestNumber:      r.RequestNumber,
		VersionNumber:      v.VersionNumber,
		StartDate:          v.StartDate.String(),
		EndDate:            v.EndDate.String(),
		PlannedPaymentDate: v.PlannedPaymentDate.String(),
		LoteNumber:         v.LoteNumber,
	}
	for _, w := range v.Workers {
		s.Lines = append(s.Lines, snapshotLine{
			WorkerID:    w.WorkerID,
			Days:        w.DaysCount.String(),
			DailyAmount: w.DailyAmount.String(),
			NetAmount:   w.NetAmount.String(),
		})
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal version snapshot: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
