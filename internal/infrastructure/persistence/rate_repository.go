package persistence

import (
	"context"

	"github.com/viaticos/backend/internal/domain/rate"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRateRepository implements the append-only rate history using GORM
type GormRateRepository struct {
	db *gorm.DB
}

// NewGormRateRepository creates a new GormRateRepository
func NewGormRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// Append inserts a new history row. Rows are never updated.
func (r *GormRateRepository) Append(ctx context.Context, entry *rate.Entry) error {
	return r.db.WithContext(ctx).Create(models.RateModelFromDomain(entry)).Error
}

// List returns the full history ordered by effective date
func (r *GormRateRepository) List(ctx context.Context) (rate.Timeline, error) {
	var rows []models.RateModel
	if err := r.db.WithContext(ctx).
		Order("effective_from ASC").Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]rate.Entry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return rate.NewTimeline(entries), nil
}

// FindEffectiveAt returns the newest entry with effective_from <= asOf
func (r *GormRateRepository) FindEffectiveAt(ctx context.Context, asOf valueobject.Date) (*rate.Entry, error) {
	return r.findLatest(ctx, "effective_from <= ?", models.DateColumn(asOf))
}

// FindPreviousTo returns the newest entry with effective_from < d
func (r *GormRateRepository) FindPreviousTo(ctx context.Context, d valueobject.Date) (*rate.Entry, error) {
	return r.findLatest(ctx, "effective_from < ?", models.DateColumn(d))
}

func (r *GormRateRepository) findLatest(ctx context.Context, cond string, arg any) (*rate.Entry, error) {
	var model models.RateModel
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("effective_from DESC").Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err, "No rate in force")
	}
	return model.ToDomain(), nil
}

var _ rate.Repository = (*GormRateRepository)(nil)
