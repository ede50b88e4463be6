package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	domainRepo "github.com/greenbush/returns-api/internal/domain/repository"
	"gorm.io/gorm"
)

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return request repository
func NewReturnRepository(db *gorm.DB) domainRepo.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, request *entity.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *returnRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReturnRequest, error) {
	var request entity.ReturnRequest
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Customer").
		Preload("Items").
		First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &request, err
}

func (r *returnRepository) GetByNumber(ctx context.Context, number string) (*entity.ReturnRequest, error) {
	var request entity.ReturnRequest
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Customer").
		Preload("Items").
		First(&request, "return_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &request, err
}

func (r *returnRepository) List(ctx context.Context, params *domainRepo.ReturnFilterParams) ([]entity.ReturnRequest, int64, error) {
	var requests []entity.ReturnRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReturnRequest{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		query = query.Where("return_number ILIKE ? OR sale_invoice_no ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&requests).Error

	return requests, total, err
}

func (r *returnRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.ReturnStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).Model(&entity.ReturnRequest{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkDestroyed guards on destroyed_at IS NULL so two concurrent
// destructions can never both persist a record or both reach the
// regulator reporter.
func (r *returnRepository) MarkDestroyed(ctx context.Context, id uuid.UUID, status enum.ReturnStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.ReturnRequest{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND status = ? AND destroyed_at IS NULL", id, status).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *returnRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.ReturnRequest{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(updates).Error
}
