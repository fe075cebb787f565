package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viaticos/backend/internal/domain/request"
	"github.com/viaticos/backend/internal/domain/shared"
	"github.com/viaticos/backend/internal/domain/shared/valueobject"
	"github.com/viaticos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequestRepository implements the request and version store using GORM
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// Create inserts a request with its versions. A duplicate request number
// is reported as ALREADY_EXISTS so the caller can retry numbering.
func (r *GormRequestRepository) Create(ctx context.Context, req *request.ViaticRequest) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.ViaticRequestModelFromDomain(req)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Request number %s is already taken", req.RequestNumber))
		}
		return err
	}
	for _, v := range req.Versions {
		if err := r.insertVersion(db, v); err != nil {
			return err
		}
	}
	return nil
}

// FindByID loads a request with every version and its children
func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*request.ViaticRequest, error) {
	var model models.ViaticRequestModel
	if err := r.db.WithContext(ctx).
		Preload("Versions.Workers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Versions.DayConcepts").
		Preload("Versions.Signature").
		Preload("Versions.Payment").
		Preload("Versions.Corrections", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Request not found")
	}
	return model.ToDomain()
}

// List returns requests without versions, newest first
func (r *GormRequestRepository) List(ctx context.Context, filter request.ListFilter) ([]*request.ViaticRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ViaticRequestModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AreaID != nil {
		query = query.Where("area_id = ?", *filter.AreaID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.OrderDir == "asc" {
		order = "created_at ASC"
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	var rows []models.ViaticRequestModel
	if err := query.Order(order).Order("request_number DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*request.ViaticRequest, 0, len(rows))
	for i := range rows {
		req, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, req)
	}
	return out, total, nil
}

// LatestRequestNumber returns the number of the most recently created request
func (r *GormRequestRepository) LatestRequestNumber(ctx context.Context) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.ViaticRequestModel{}).
		Order("created_at DESC").Order("request_number DESC").
		Limit(1).
		Pluck("request_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// LatestLoteNumber returns the highest lote number of the year
func (r *GormRequestRepository) LatestLoteNumber(ctx context.Context, year int) (string, error) {
	var lotes []string
	if err := r.db.WithContext(ctx).Model(&models.VersionModel{}).
		Where("lote_number LIKE ?", fmt.Sprintf("L-%04d-%%", year)).
		Order("lote_number DESC").
		Limit(1).
		Pluck("lote_number", &lotes).Error; err != nil {
		return "", err
	}
	if len(lotes) == 0 {
		return "", nil
	}
	return lotes[0], nil
}

// FindVersionsOverlapping returns every version, superseded ones included,
// of the non-cancelled requests whose range overlaps [from, to]
func (r *GormRequestRepository) FindVersionsOverlapping(ctx context.Context, from, to valueobject.Date) ([]*request.Version, error) {
	var rows []models.VersionModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN viatic_requests ON viatic_requests.id = viatic_request_versions.request_id").
		Where("viatic_requests.status <> ?", request.StatusCancelled).
		Where("viatic_request_versions.start_date <= ? AND viatic_request_versions.end_date >= ?",
			models.DateColumn(to), models.DateColumn(from)).
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("viatic_request_versions.start_date ASC").
		Order("viatic_request_versions.request_id ASC").
		Order("viatic_request_versions.version_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*request.Version, 0, len(rows))
	for i := range rows {
		v, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AppendVersion moves the request pointer to v and inserts v with its
// children. The pointer only moves from v.VersionNumber-1 at the previous
// lock version; a lost race is VERSION_CONFLICT.
func (r *GormRequestRepository) AppendVersion(ctx context.Context, req *request.ViaticRequest, v *request.Version) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.ViaticRequestModel{}).
		Where("id = ? AND current_version_number = ? AND version = ?", req.ID, v.VersionNumber-1, req.Version-1).
		Updates(map[string]any{
			"current_version_number": v.VersionNumber,
			"status":                 req.Status,
			"version":                req.Version,
			"updated_at":             req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeVersionConflict,
			"The request has been modified by another transaction")
	}
	if err := r.insertVersion(db, v); err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeVersionConflict,
				fmt.Sprintf("Version %d already exists", v.VersionNumber))
		}
		return err
	}
	return nil
}

// SaveState persists status and lock version with a compare-and-swap
func (r *GormRequestRepository) SaveState(ctx context.Context, req *request.ViaticRequest) error {
	result := r.db.WithContext(ctx).Model(&models.ViaticRequestModel{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]any{
			"status":     req.Status,
			"version":    req.Version,
			"updated_at": req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeVersionConflict,
			"The request has been modified by another transaction")
	}
	return nil
}

// SaveVersionDetails writes the standardization fields of a version
func (r *GormRequestRepository) SaveVersionDetails(ctx context.Context, v *request.Version) error {
	result := r.db.WithContext(ctx).Model(&models.VersionModel{}).
		Where("id = ?", v.ID).
		Updates(map[string]any{
			"lote_number":          v.LoteNumber,
			"planned_payment_date": models.NullableDateColumn(v.PlannedPaymentDate),
			"notes":                v.Notes,
			"updated_at":           v.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, "Version not found")
	}
	return nil
}

// SaveSignature upserts the signature of its version
func (r *GormRequestRepository) SaveSignature(ctx context.Context, s *request.Signature) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"signed_by", "signed_at", "method", "doc_hash"}),
	}).Create(models.SignatureModelFromDomain(s)).Error
}

// SavePayment upserts the treasury payment of its version
func (r *GormRequestRepository) SavePayment(ctx context.Context, p *request.TreasuryPayment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"paid_at", "payment_reference", "notes", "created_by"}),
	}).Create(models.TreasuryPaymentModelFromDomain(p)).Error
}

// SaveCorrectionRequest upserts a correction request
func (r *GormRequestRepository) SaveCorrectionRequest(ctx context.Context, c *request.CorrectionRequest) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "resolved_at"}),
	}).Create(models.CorrectionRequestModelFromDomain(c)).Error
}

// FindLineItemByID loads one worker line
func (r *GormRequestRepository) FindLineItemByID(ctx context.Context, id uuid.UUID) (*request.LineItem, error) {
	var model models.LineItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Request worker line not found")
	}
	return model.ToDomain(), nil
}

// insertVersion writes a version row followed by its children
func (r *GormRequestRepository) insertVersion(db *gorm.DB, v *request.Version) error {
	vm, err := models.VersionModelFromDomain(v)
	if err != nil {
		return err
	}
	if err := db.Omit(clause.Associations).Create(vm).Error; err != nil {
		return err
	}
	if len(v.Workers) > 0 {
		lines := make([]*models.LineItemModel, 0, len(v.Workers))
		for _, w := range v.Workers {
			w.VersionID = v.ID
			lines = append(lines, models.LineItemModelFromDomain(w))
		}
		if err := db.Create(&lines).Error; err != nil {
			return err
		}
	}
	if len(v.DayConcepts) > 0 {
		concepts := make([]*models.DayConceptModel, 0, len(v.DayConcepts))
		for _, c := range v.DayConcepts {
			c.VersionID = v.ID
			concepts = append(concepts, models.DayConceptModelFromDomain(c))
		}
		if err := db.Create(&concepts).Error; err != nil {
			return err
		}
	}
	if v.Signature != nil {
		if err := db.Create(models.SignatureModelFromDomain(v.Signature)).Error; err != nil {
			return err
		}
	}
	if v.Payment != nil {
		if err := db.Create(models.TreasuryPaymentModelFromDomain(v.Payment)).Error; err != nil {
			return err
		}
	}
	for _, c := range v.Corrections {
		if err := db.Create(models.CorrectionRequestModelFromDomain(c)).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ request.Repository = (*GormRequestRepository)(nil)
