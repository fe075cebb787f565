package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/audit"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository stores audit events in the audit_logs table
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Record implements audit.Sink
func (r *GormAuditLogRepository) Record(ctx context.Context, e audit.Event) error {
	after, err := json.Marshal(e.After)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}
	model := &models.AuditLogModel{
		ID:         uuid.New(),
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		Action:     e.Action,
		AfterJSON:  string(after),
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByEntity returns the events of one entity, oldest first
func (r *GormAuditLogRepository) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]audit.Event, error) {
	var rows []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]audit.Event, 0, len(rows))
	for _, row := range rows {
		var after map[string]any
		if row.AfterJSON != "" {
			if err := json.Unmarshal([]byte(row.AfterJSON), &after); err != nil {
				return nil, fmt.Errorf("decode audit payload %s: %w", row.ID, err)
			}
		}
		events = append(events, audit.Event{
			Entity:     row.Entity,
			EntityID:   row.EntityID,
			Action:     row.Action,
			After:      after,
			ActorID:    row.ActorID,
			OccurredAt: row.OccurredAt,
		})
	}
	return events, nil
}

var _ audit.Sink = (*GormAuditLogRepository)(nil)
