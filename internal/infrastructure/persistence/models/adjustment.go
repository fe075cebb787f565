package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/adjustment"
)

// AdjustmentBatchModel is a retroactive back-pay batch
type AdjustmentBatchModel struct {
	BaseModel
	PeriodMonth   string                `gorm:"type:varchar(7);not null;index"`
	EffectiveFrom time.Time             `gorm:"type:date;not null"`
	OldAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	NewAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	RateEntryID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status        adjustment.Status     `gorm:"type:varchar(20);not null;index"`
	CreatedBy     uuid.UUID             `gorm:"type:uuid;not null"`
	AppliedAt     *time.Time
	AppliedBy     *uuid.UUID            `gorm:"type:uuid"`
	Items         []AdjustmentItemModel `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (AdjustmentBatchModel) TableName() string {
	return "viatic_adjustment_batches"
}

// ToDomain converts the batch with its loaded items
func (m *AdjustmentBatchModel) ToDomain() *adjustment.Batch {
	b := &adjustment.Batch{
		BaseEntity:    m.BaseModel.ToDomain(),
		PeriodMonth:   m.PeriodMonth,
		EffectiveFrom: DateValue(m.EffectiveFrom),
		OldAmount:     m.OldAmount,
		NewAmount:     m.NewAmount,
		RateEntryID:   m.RateEntryID,
		Status:        m.Status,
		CreatedBy:     m.CreatedBy,
		AppliedAt:     m.AppliedAt,
		AppliedBy:     m.AppliedBy,
	}
	for i := range m.Items {
		b.Items = append(b.Items, m.Items[i].ToDomain())
	}
	return b
}

// AdjustmentBatchModelFromDomain creates the batch row; items are written separately
func AdjustmentBatchModelFromDomain(b *adjustment.Batch) *AdjustmentBatchModel {
	m := &AdjustmentBatchModel{
		PeriodMonth:   b.PeriodMonth,
		EffectiveFrom: DateColumn(b.EffectiveFrom),
		OldAmount:     b.OldAmount,
		NewAmount:     b.NewAmount,
		RateEntryID:   b.RateEntryID,
		Status:        b.Status,
		CreatedBy:     b.CreatedBy,
		AppliedAt:     b.AppliedAt,
		AppliedBy:     b.AppliedBy,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// AdjustmentItemModel is the back-pay of one worker within a batch
type AdjustmentItemModel struct {
	BaseModel
	BatchID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	WorkerID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	DaysAffected decimal.Decimal   `gorm:"type:decimal(8,1);not null"`
	AmountDiff   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status       adjustment.Status `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AdjustmentItemModel) TableName() string {
	return "viatic_adjustment_items"
}

// ToDomain converts the persistence model to a domain item
func (m *AdjustmentItemModel) ToDomain() *adjustment.Item {
	return &adjustment.Item{
		BaseEntity:   m.BaseModel.ToDomain(),
		BatchID:      m.BatchID,
		WorkerID:     m.WorkerID,
		DaysAffected: m.DaysAffected,
		AmountDiff:   m.AmountDiff,
		Status:       m.Status,
	}
}

// AdjustmentItemModelFromDomain creates a persistence model from a domain item
func AdjustmentItemModelFromDomain(it *adjustment.Item) *AdjustmentItemModel {
	m := &AdjustmentItemModel{
		BatchID:      it.BatchID,
		WorkerID:     it.WorkerID,
		DaysAffected: it.DaysAffected,
		AmountDiff:   it.AmountDiff,
		Status:       it.Status,
	}
	m.FromDomainBaseEntity(it.BaseEntity)
	return m
}
