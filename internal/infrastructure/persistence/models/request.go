package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/request"
)

// ViaticRequestModel is the persistence model for the request aggregate root
type ViaticRequestModel struct {
	AggregateModel
	RequestNumber        string         `gorm:"type:varchar(30);not null;uniqueIndex"`
	AreaID               uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedBy            uuid.UUID      `gorm:"type:uuid;not null"`
	Status               request.Status `gorm:"type:varchar(30);not null;index"`
	CurrentVersionNumber int            `gorm:"not null;default:1"`
	Versions             []VersionModel `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (ViaticRequestModel) TableName() string {
	return "viatic_requests"
}

// ToDomain converts the persistence model, including loaded versions
func (m *ViaticRequestModel) ToDomain() (*request.ViaticRequest, error) {
	r := &request.ViaticRequest{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		RequestNumber:        m.RequestNumber,
		AreaID:               m.AreaID,
		CreatedBy:            m.CreatedBy,
		Status:               m.Status,
		CurrentVersionNumber: m.CurrentVersionNumber,
		Versions:             make([]*request.Version, 0, len(m.Versions)),
	}
	sort.Slice(m.Versions, func(i, j int) bool {
		return m.Versions[i].VersionNumber < m.Versions[j].VersionNumber
	})
	for i := range m.Versions {
		v, err := m.Versions[i].ToDomain()
		if err != nil {
			return nil, err
		}
		r.Versions = append(r.Versions, v)
	}
	return r, nil
}

// ViaticRequestModelFromDomain creates the root row; versions are written separately
func ViaticRequestModelFromDomain(r *request.ViaticRequest) *ViaticRequestModel {
	m := &ViaticRequestModel{
		RequestNumber:        r.RequestNumber,
		AreaID:               r.AreaID,
		CreatedBy:            r.CreatedBy,
		Status:               r.Status,
		CurrentVersionNumber: r.CurrentVersionNumber,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// VersionModel is one immutable snapshot of a request
type VersionModel struct {
	BaseModel
	RequestID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_request_version"`
	VersionNumber      int        `gorm:"not null;uniqueIndex:idx_request_version"`
	StartDate          time.Time  `gorm:"type:date;not null;index"`
	EndDate            time.Time  `gorm:"type:date;not null;index"`
	PlannedPaymentDate *time.Time `gorm:"type:date"`
	LoteNumber         string     `gorm:"type:varchar(20);index"`
	Notes              string     `gorm:"type:text"`
	PlanJSON           string     `gorm:"column:plan_json;type:jsonb"`
	CreatedBy          uuid.UUID  `gorm:"type:uuid;not null"`

	Workers     []LineItemModel          `gorm:"foreignKey:VersionID;references:ID"`
	DayConcepts []DayConceptModel        `gorm:"foreignKey:VersionID;references:ID"`
	Signature   *SignatureModel          `gorm:"foreignKey:VersionID;references:ID"`
	Payment     *TreasuryPaymentModel    `gorm:"foreignKey:VersionID;references:ID"`
	Corrections []CorrectionRequestModel `gorm:"foreignKey:VersionID;references:ID"`
}

// TableName returns the table name for GORM
func (VersionModel) TableName() string {
	return "viatic_request_versions"
}

// ToDomain converts the version with every loaded child
func (m *VersionModel) ToDomain() (*request.Version, error) {
	var plan request.DayPlan
	if m.PlanJSON != "" {
		if err := json.Unmarshal([]byte(m.PlanJSON), &plan); err != nil {
			return nil, fmt.Errorf("decode day plan of version %s: %w", m.ID, err)
		}
	}
	v := &request.Version{
		BaseEntity:         m.BaseModel.ToDomain(),
		RequestID:          m.RequestID,
		VersionNumber:      m.VersionNumber,
		StartDate:          DateValue(m.StartDate),
		EndDate:            DateValue(m.EndDate),
		PlannedPaymentDate: NullableDateValue(m.PlannedPaymentDate),
		LoteNumber:         m.LoteNumber,
		Notes:              m.Notes,
		Plan:               plan,
		CreatedBy:          m.CreatedBy,
	}
	for i := range m.Workers {
		v.Workers = append(v.Workers, m.Workers[i].ToDomain())
	}
	sort.Slice(m.DayConcepts, func(i, j int) bool {
		return m.DayConcepts[i].Date.Before(m.DayConcepts[j].Date)
	})
	for i := range m.DayConcepts {
		v.DayConcepts = append(v.DayConcepts, m.DayConcepts[i].ToDomain())
	}
	if m.Signature != nil {
		v.Signature = m.Signature.ToDomain()
	}
	if m.Payment != nil {
		v.Payment = m.Payment.ToDomain()
	}
	for i := range m.Corrections {
		v.Corrections = append(v.Corrections, m.Corrections[i].ToDomain())
	}
	return v, nil
}

// VersionModelFromDomain creates the version row; children are written separately.
// The stored plan always carries the current schema version.
func VersionModelFromDomain(v *request.Version) (*VersionModel, error) {
	stamped := v.Plan
	stamped.SchemaVersion = request.DayPlanSchemaVersion
	plan, err := json.Marshal(stamped)
	if err != nil {
		return nil, fmt.Errorf("encode day plan: %w", err)
	}
	m := &VersionModel{
		RequestID:          v.RequestID,
		VersionNumber:      v.VersionNumber,
		StartDate:          DateColumn(v.StartDate),
		EndDate:            DateColumn(v.EndDate),
		PlannedPaymentDate: NullableDateColumn(v.PlannedPaymentDate),
		LoteNumber:         v.LoteNumber,
		Notes:              v.Notes,
		PlanJSON:           string(plan),
		CreatedBy:          v.CreatedBy,
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m, nil
}

// LineItemModel is the allowance of one worker in one version
type LineItemModel struct {
	BaseModel
	VersionID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_version_worker"`
	WorkerID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_version_worker;index"`
	DaysCount            decimal.Decimal `gorm:"type:decimal(6,1);not null"`
	DailyAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GrossAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAppliedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetAmount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "viatic_request_workers"
}

// ToDomain converts the persistence model to a domain line item
func (m *LineItemModel) ToDomain() *request.LineItem {
	return &request.LineItem{
		BaseEntity:           m.BaseModel.ToDomain(),
		VersionID:            m.VersionID,
		WorkerID:             m.WorkerID,
		DaysCount:            m.DaysCount,
		DailyAmount:          m.DailyAmount,
		GrossAmount:          m.GrossAmount,
		BalanceAppliedAmount: m.BalanceAppliedAmount,
		NetAmount:            m.NetAmount,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain line item
func LineItemModelFromDomain(l *request.LineItem) *LineItemModel {
	m := &LineItemModel{
		VersionID:            l.VersionID,
		WorkerID:             l.WorkerID,
		DaysCount:            l.DaysCount,
		DailyAmount:          l.DailyAmount,
		GrossAmount:          l.GrossAmount,
		BalanceAppliedAmount: l.BalanceAppliedAmount,
		NetAmount:            l.NetAmount,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// DayConceptModel is the work description of one date
type DayConceptModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	VersionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Date        time.Time `gorm:"type:date;not null"`
	ConceptText string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (DayConceptModel) TableName() string {
	return "viatic_day_concepts"
}

// ToDomain converts the persistence model to a domain day concept
func (m *DayConceptModel) ToDomain() *request.DayConcept {
	return &request.DayConcept{
		ID:          m.ID,
		VersionID:   m.VersionID,
		Date:        DateValue(m.Date),
		ConceptText: m.ConceptText,
	}
}

// DayConceptModelFromDomain creates a persistence model from a domain day concept
func DayConceptModelFromDomain(c *request.DayConcept) *DayConceptModel {
	return &DayConceptModel{
		ID:          c.ID,
		VersionID:   c.VersionID,
		Date:        DateColumn(c.Date),
		ConceptText: c.ConceptText,
	}
}

// SignatureModel is the sign-off of a version, at most one per version
type SignatureModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	VersionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SignedBy  uuid.UUID `gorm:"type:uuid;not null"`
	SignedAt  time.Time `gorm:"not null"`
	Method    string    `gorm:"type:varchar(20);not null"`
	DocHash   string    `gorm:"type:varchar(128)"`
}

// TableName returns the table name for GORM
func (SignatureModel) TableName() string {
	return "viatic_signatures"
}

// ToDomain converts the persistence model to a domain signature
func (m *SignatureModel) ToDomain() *request.Signature {
	return &request.Signature{
		ID:        m.ID,
		VersionID: m.VersionID,
		SignedBy:  m.SignedBy,
		SignedAt:  m.SignedAt,
		Method:    m.Method,
		DocHash:   m.DocHash,
	}
}

// SignatureModelFromDomain creates a persistence model from a domain signature
func SignatureModelFromDomain(s *request.Signature) *SignatureModel {
	return &SignatureModel{
		ID:        s.ID,
		VersionID: s.VersionID,
		SignedBy:  s.SignedBy,
		SignedAt:  s.SignedAt,
		Method:    s.Method,
		DocHash:   s.DocHash,
	}
}

// TreasuryPaymentModel is the payment of a version, at most one per version
type TreasuryPaymentModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	VersionID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PaidAt           time.Time `gorm:"not null"`
	PaymentReference string    `gorm:"type:varchar(100)"`
	Notes            string    `gorm:"type:text"`
	CreatedBy        uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (TreasuryPaymentModel) TableName() string {
	return "viatic_treasury_payments"
}

// ToDomain converts the persistence model to a domain payment
func (m *TreasuryPaymentModel) ToDomain() *request.TreasuryPayment {
	return &request.TreasuryPayment{
		ID:               m.ID,
		VersionID:        m.VersionID,
		PaidAt:           m.PaidAt,
		PaymentReference: m.PaymentReference,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
	}
}

// TreasuryPaymentModelFromDomain creates a persistence model from a domain payment
func TreasuryPaymentModelFromDomain(p *request.TreasuryPayment) *TreasuryPaymentModel {
	return &TreasuryPaymentModel{
		ID:               p.ID,
		VersionID:        p.VersionID,
		PaidAt:           p.PaidAt,
		PaymentReference: p.PaymentReference,
		Notes:            p.Notes,
		CreatedBy:        p.CreatedBy,
	}
}

// CorrectionRequestModel is a treasury correction request
type CorrectionRequestModel struct {
	ID                   uuid.UUID                `gorm:"type:uuid;primary_key"`
	VersionID            uuid.UUID                `gorm:"type:uuid;not null;index"`
	Reason               string                   `gorm:"type:text;not null"`
	SuggestedPaymentDate *time.Time               `gorm:"type:date"`
	Status               request.CorrectionStatus `gorm:"type:varchar(20);not null;index"`
	CreatedBy            uuid.UUID                `gorm:"type:uuid;not null"`
	CreatedAt            time.Time                `gorm:"not null"`
	ResolvedAt           *time.Time
}

// TableName returns the table name for GORM
func (CorrectionRequestModel) TableName() string {
	return "viatic_correction_requests"
}

// ToDomain converts the persistence model to a domain correction request
func (m *CorrectionRequestModel) ToDomain() *request.CorrectionRequest {
	return &request.CorrectionRequest{
		ID:                   m.ID,
		VersionID:            m.VersionID,
		Reason:               m.Reason,
		SuggestedPaymentDate: NullableDateValue(m.SuggestedPaymentDate),
		Status:               m.Status,
		CreatedBy:            m.CreatedBy,
		CreatedAt:            m.CreatedAt,
		ResolvedAt:           m.ResolvedAt,
	}
}

// CorrectionRequestModelFromDomain creates a persistence model from a domain correction request
func CorrectionRequestModelFromDomain(c *request.CorrectionRequest) *CorrectionRequestModel {
	return &CorrectionRequestModel{
		ID:                   c.ID,
		VersionID:            c.VersionID,
		Reason:               c.Reason,
		SuggestedPaymentDate: NullableDateColumn(c.SuggestedPaymentDate),
		Status:               c.Status,
		CreatedBy:            c.CreatedBy,
		CreatedAt:            c.CreatedAt,
		ResolvedAt:           c.ResolvedAt,
	}
}
