package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/rendition"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRenditionRepository implements the rendition store using GORM
type GormRenditionRepository struct {
	db *gorm.DB
}

// NewGormRenditionRepository creates a new GormRenditionRepository
func NewGormRenditionRepository(db *gorm.DB) *GormRenditionRepository {
	return &GormRenditionRepository{db: db}
}

// FindByRequestWorker loads the rendition of a line with its legs
func (r *GormRenditionRepository) FindByRequestWorker(ctx context.Context, requestWorkerID uuid.UUID) (*rendition.Rendition, error) {
	var model models.RenditionModel
	if err := r.db.WithContext(ctx).
		Preload("Legs").
		Where("request_worker_id = ?", requestWorkerID).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Rendition not found")
	}
	return model.ToDomain(), nil
}

// Save upserts the rendition by line and replaces its legs
func (r *GormRenditionRepository) Save(ctx context.Context, rd *rendition.Rendition) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "request_worker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reason", "vehicle_plate", "attachment_url", "notes", "consumed_viaticos", "updated_at",
		}),
	}).Create(models.RenditionModelFromDomain(rd)).Error; err != nil {
		return err
	}

	// a concurrent first insert keeps the winner's id
	var ids []uuid.UUID
	if err := db.Model(&models.RenditionModel{}).
		Where("request_worker_id = ?", rd.RequestWorkerID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 1 {
		rd.ID = ids[0]
	}

	if err := db.Where("rendition_id = ?", rd.ID).Delete(&models.RenditionLegModel{}).Error; err != nil {
		return err
	}
	if len(rd.Legs) == 0 {
		return nil
	}
	legs := make([]*models.RenditionLegModel, 0, len(rd.Legs))
	for _, l := range rd.Legs {
		legs = append(legs, models.RenditionLegModelFromDomain(rd.ID, l))
	}
	return db.Create(&legs).Error
}

var _ rendition.Repository = (*GormRenditionRepository)(nil)
