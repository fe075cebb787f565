package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/adjustment"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAdjustmentRepository implements the adjustment batch store using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// Create inserts a batch with its items
func (r *GormAdjustmentRepository) Create(ctx context.Context, batch *adjustment.Batch) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.AdjustmentBatchModelFromDomain(batch)).Error; err != nil {
		return err
	}
	if len(batch.Items) == 0 {
		return nil
	}
	items := make([]*models.AdjustmentItemModel, 0, len(batch.Items))
	for _, it := range batch.Items {
		it.BatchID = batch.ID
		items = append(items, models.AdjustmentItemModelFromDomain(it))
	}
	return db.Create(&items).Error
}

// FindByID loads a batch with its items
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*adjustment.Batch, error) {
	var model models.AdjustmentBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Adjustment batch not found")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a batch holding its row lock until commit.
// Items are read with a separate query so the lock stays on the batch row.
func (r *GormAdjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*adjustment.Batch, error) {
	db := r.db.WithContext(ctx)
	var model models.AdjustmentBatchModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Adjustment batch not found")
	}
	if err := db.Where("batch_id = ?", id).Order("created_at ASC").Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns batches newest first, optionally filtered by status
func (r *GormAdjustmentRepository) List(ctx context.Context, status *adjustment.Status) ([]*adjustment.Batch, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.AdjustmentBatchModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*adjustment.Batch, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// MarkApplied flips a DRAFT batch and its items to APPLIED with a
// conditional update on the status
func (r *GormAdjustmentRepository) MarkApplied(ctx context.Context, batch *adjustment.Batch) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.AdjustmentBatchModel{}).
		Where("id = ? AND status = ?", batch.ID, adjustment.StatusDraft).
		Updates(map[string]any{
			"status":     adjustment.StatusApplied,
			"applied_at": batch.AppliedAt,
			"applied_by": batch.AppliedBy,
			"updated_at": batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeAlreadyApplied,
			fmt.Sprintf("Batch %s is not in DRAFT status", batch.ID))
	}
	return db.Model(&models.AdjustmentItemModel{}).
		Where("batch_id = ?", batch.ID).
		Updates(map[string]any{
			"status":     adjustment.StatusApplied,
			"updated_at": batch.UpdatedAt,
		}).Error
}

var _ adjustment.Repository = (*GormAdjustmentRepository)(nil)
