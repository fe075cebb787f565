package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/ledger"
)

// LedgerEntryModel is one row of the worker balance ledger.
// (worker_id, purpose, source_id) is unique.
type LedgerEntryModel struct {
	BaseModel
	WorkerID                uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_key;index"`
	Purpose                 ledger.Purpose   `gorm:"type:varchar(30);not null;uniqueIndex:idx_ledger_key"`
	SourceID                uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_key"`
	Type                    ledger.EntryType `gorm:"type:varchar(10);not null"`
	Amount                  decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	RelatedRequestVersionID *uuid.UUID       `gorm:"type:uuid;index"`
	Reason                  string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "worker_balance_ledger"
}

// ToDomain converts the persistence model to a domain ledger entry
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		Key: ledger.Key{
			WorkerID: m.WorkerID,
			Purpose:  m.Purpose,
			SourceID: m.SourceID,
		},
		Type:                    m.Type,
		Amount:                  m.Amount,
		RelatedRequestVersionID: m.RelatedRequestVersionID,
		Reason:                  m.Reason,
	}
}

// FromDomain populates the persistence model from a domain ledger entry
func (m *LedgerEntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.WorkerID = e.WorkerID
	m.Purpose = e.Purpose
	m.SourceID = e.SourceID
	m.Type = e.Type
	m.Amount = e.Amount
	m.RelatedRequestVersionID = e.RelatedRequestVersionID
	m.Reason = e.Reason
}

// LedgerEntryModelFromDomain creates a persistence model from a domain ledger entry
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
