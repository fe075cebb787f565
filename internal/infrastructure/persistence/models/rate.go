package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/rate"
)

// RateModel is one row of the append-only rate history
type RateModel struct {
	BaseModel
	EffectiveFrom time.Time       `gorm:"type:date;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Note          string          `gorm:"type:text"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (RateModel) TableName() string {
	return "viatic_rate_history"
}

// ToDomain converts the persistence model to a domain rate entry
func (m *RateModel) ToDomain() *rate.Entry {
	return &rate.Entry{
		BaseEntity:    m.BaseModel.ToDomain(),
		EffectiveFrom: DateValue(m.EffectiveFrom),
		Amount:        m.Amount,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
	}
}

// RateModelFromDomain creates a persistence model from a domain rate entry
func RateModelFromDomain(e *rate.Entry) *RateModel {
	m := &RateModel{
		EffectiveFrom: DateColumn(e.EffectiveFrom),
		Amount:        e.Amount,
		Note:          e.Note,
		CreatedBy:     e.CreatedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
