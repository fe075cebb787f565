package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogModel stores one committed business change
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Entity     string    `gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     string    `gorm:"type:varchar(50);not null"`
	AfterJSON  string    `gorm:"column:after_json;type:jsonb"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OccurredAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
