package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/workforce"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWorkerRepository implements WorkerRepository using GORM
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewGormWorkerRepository creates a new GormWorkerRepository
func NewGormWorkerRepository(db *gorm.DB) *GormWorkerRepository {
	return &GormWorkerRepository{db: db}
}

// Create inserts a worker; a duplicate legajo is ALREADY_EXISTS
func (r *GormWorkerRepository) Create(ctx context.Context, worker *workforce.Worker) error {
	if err := r.db.WithContext(ctx).Create(models.WorkerModelFromDomain(worker)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Worker with legajo "+worker.Legajo+" already exists")
		}
		return err
	}
	return nil
}

// FindByID finds a worker by ID
func (r *GormWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Worker, error) {
	var model models.WorkerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Worker not found")
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the workers that exist among ids
func (r *GormWorkerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*workforce.Worker, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.WorkerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toWorkers(rows), nil
}

// FindByLegajo finds a worker by payroll number
func (r *GormWorkerRepository) FindByLegajo(ctx context.Context, legajo string) (*workforce.Worker, error) {
	var model models.WorkerModel
	if err := r.db.WithContext(ctx).Where("legajo = ?", legajo).First(&model).Error; err != nil {
		return nil, notFound(err, "Worker not found")
	}
	return model.ToDomain(), nil
}

// ExistsByLegajo checks if a worker with the payroll number exists
func (r *GormWorkerRepository) ExistsByLegajo(ctx context.Context, legajo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.WorkerModel{}).
		Where("legajo = ?", legajo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns workers ordered by name
func (r *GormWorkerRepository) List(ctx context.Context) ([]*workforce.Worker, error) {
	var rows []models.WorkerModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toWorkers(rows), nil
}

func toWorkers(rows []models.WorkerModel) []*workforce.Worker {
	out := make([]*workforce.Worker, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormAreaRepository implements AreaRepository using GORM
type GormAreaRepository struct {
	db *gorm.DB
}

// NewGormAreaRepository creates a new GormAreaRepository
func NewGormAreaRepository(db *gorm.DB) *GormAreaRepository {
	return &GormAreaRepository{db: db}
}

// Create inserts an area; a duplicate name is ALREADY_EXISTS
func (r *GormAreaRepository) Create(ctx context.Context, area *workforce.Area) error {
	if err := r.db.WithContext(ctx).Create(models.AreaModelFromDomain(area)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Area "+area.Name+" already exists")
		}
		return err
	}
	return nil
}

// FindByID finds an area by ID
func (r *GormAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.Area, error) {
	var model models.AreaModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Area not found")
	}
	return model.ToDomain(), nil
}

// FindByName finds an area by its unique name
func (r *GormAreaRepository) FindByName(ctx context.Context, name string) (*workforce.Area, error) {
	var model models.AreaModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, notFound(err, "Area not found")
	}
	return model.ToDomain(), nil
}

// List returns areas ordered by name
func (r *GormAreaRepository) List(ctx context.Context) ([]*workforce.Area, error) {
	var rows []models.AreaModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*workforce.Area, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ workforce.WorkerRepository = (*GormWorkerRepository)(nil)
	_ workforce.AreaRepository   = (*GormAreaRepository)(nil)
)
