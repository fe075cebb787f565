package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viaticos/backend/internal/domain/ledger"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements the worker balance ledger using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByKeyForUpdate loads the entry of a key with SELECT ... FOR UPDATE
func (r *GormLedgerRepository) FindByKeyForUpdate(ctx context.Context, key ledger.Key) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("worker_id = ? AND purpose = ? AND source_id = ?", key.WorkerID, key.Purpose, key.SourceID).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Ledger entry not found")
	}
	return model.ToDomain(), nil
}

// Upsert writes the entry of its key. An existing row keeps its identity and
// takes the new type, amount and reason. An insert that races with another
// writer of the same key falls through to ON CONFLICT DO UPDATE.
func (r *GormLedgerRepository) Upsert(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, error) {
	db := r.db.WithContext(ctx)
	existing, err := r.FindByKeyForUpdate(ctx, entry.Key)
	switch {
	case err == nil:
		existing.Overwrite(entry)
		if err := db.Model(&models.LedgerEntryModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"type":                       existing.Type,
				"amount":                     existing.Amount,
				"related_request_version_id": existing.RelatedRequestVersionID,
				"reason":                     existing.Reason,
				"updated_at":                 existing.UpdatedAt,
			}).Error; err != nil {
			return nil, err
		}
		return existing, nil
	case !isNotFound(err):
		return nil, err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}, {Name: "purpose"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"type", "amount", "related_request_version_id", "reason", "updated_at",
		}),
	}).Create(models.LedgerEntryModelFromDomain(entry)).Error; err != nil {
		return nil, err
	}
	return r.FindByKeyForUpdate(ctx, entry.Key)
}

// DeleteByKey removes the entry of a key, reporting whether one existed
func (r *GormLedgerRepository) DeleteByKey(ctx context.Context, key ledger.Key) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("worker_id = ? AND purpose = ? AND source_id = ?", key.WorkerID, key.Purpose, key.SourceID).
		Delete(&models.LedgerEntryModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByWorker returns a worker's entries, oldest first
func (r *GormLedgerRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*ledger.Entry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*ledger.Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Balance returns Σcredits − Σdebits of a worker. The sum is computed on
// decimals rather than in SQL so every backend gives the exact value.
func (r *GormLedgerRepository) Balance(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	entries, err := r.ListByWorker(ctx, workerID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance(entries), nil
}

var _ ledger.Repository = (*GormLedgerRepository)(nil)
