package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/rendition"
)

// RenditionModel is the expense report of one line, unique per line
type RenditionModel struct {
	BaseModel
	RequestWorkerID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	RequestVersionID uuid.UUID           `gorm:"type:uuid;not null;index"`
	WorkerID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	Reason           string              `gorm:"type:text"`
	VehiclePlate     string              `gorm:"type:varchar(20)"`
	AttachmentURL    string              `gorm:"column:attachment_url;type:varchar(500)"`
	Notes            string              `gorm:"type:text"`
	ConsumedViaticos *decimal.Decimal    `gorm:"type:decimal(6,1)"`
	CreatedBy        uuid.UUID           `gorm:"type:uuid;not null"`
	Legs             []RenditionLegModel `gorm:"foreignKey:RenditionID;references:ID"`
}

// TableName returns the table name for GORM
func (RenditionModel) TableName() string {
	return "viatic_renditions"
}

// ToDomain converts the rendition with its loaded legs
func (m *RenditionModel) ToDomain() *rendition.Rendition {
	r := &rendition.Rendition{
		BaseEntity:       m.BaseModel.ToDomain(),
		RequestWorkerID:  m.RequestWorkerID,
		RequestVersionID: m.RequestVersionID,
		WorkerID:         m.WorkerID,
		Reason:           m.Reason,
		VehiclePlate:     m.VehiclePlate,
		AttachmentURL:    m.AttachmentURL,
		Notes:            m.Notes,
		ConsumedViaticos: m.ConsumedViaticos,
		CreatedBy:        m.CreatedBy,
		Legs:             make([]rendition.Leg, 0, len(m.Legs)),
	}
	sort.Slice(m.Legs, func(i, j int) bool { return m.Legs[i].OrderIndex < m.Legs[j].OrderIndex })
	for i := range m.Legs {
		r.Legs = append(r.Legs, m.Legs[i].ToDomain())
	}
	return r
}

// RenditionModelFromDomain creates the rendition row; legs are written separately
func RenditionModelFromDomain(r *rendition.Rendition) *RenditionModel {
	m := &RenditionModel{
		RequestWorkerID:  r.RequestWorkerID,
		RequestVersionID: r.RequestVersionID,
		WorkerID:         r.WorkerID,
		Reason:           r.Reason,
		VehiclePlate:     r.VehiclePlate,
		AttachmentURL:    r.AttachmentURL,
		Notes:            r.Notes,
		ConsumedViaticos: r.ConsumedViaticos,
		CreatedBy:        r.CreatedBy,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// RenditionLegModel is one trip segment. Legs are replaced wholesale.
type RenditionLegModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	RenditionID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderIndex        int              `gorm:"not null"`
	DepartureLocation string           `gorm:"type:varchar(200);not null"`
	ArrivalLocation   string           `gorm:"type:varchar(200);not null"`
	DepartureAt       *time.Time
	ArrivalAt         *time.Time
	DepartureKm       *decimal.Decimal `gorm:"type:decimal(12,1)"`
	ArrivalKm         *decimal.Decimal `gorm:"type:decimal(12,1)"`
}

// TableName returns the table name for GORM
func (RenditionLegModel) TableName() string {
	return "viatic_rendition_legs"
}

// ToDomain converts the persistence model to a domain leg
func (m *RenditionLegModel) ToDomain() rendition.Leg {
	return rendition.Leg{
		OrderIndex:        m.OrderIndex,
		DepartureLocation: m.DepartureLocation,
		ArrivalLocation:   m.ArrivalLocation,
		DepartureAt:       m.DepartureAt,
		ArrivalAt:         m.ArrivalAt,
		DepartureKm:       m.DepartureKm,
		ArrivalKm:         m.ArrivalKm,
	}
}

// RenditionLegModelFromDomain creates a leg row of a rendition
func RenditionLegModelFromDomain(renditionID uuid.UUID, l rendition.Leg) *RenditionLegModel {
	return &RenditionLegModel{
		ID:                uuid.New(),
		RenditionID:       renditionID,
		OrderIndex:        l.OrderIndex,
		DepartureLocation: l.DepartureLocation,
		ArrivalLocation:   l.ArrivalLocation,
		DepartureAt:       l.DepartureAt,
		ArrivalAt:         l.ArrivalAt,
		DepartureKm:       l.DepartureKm,
		ArrivalKm:         l.ArrivalKm,
	}
}
