package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	domainRepo "github.com/greenbush/returns-api/internal/domain/repository"
	"github.com/greenbush/returns-api/pkg/apperror"
	"gorm.io/gorm"
)

type storeCreditRepository struct {
	db *gorm.DB
}

// NewStoreCreditRepository creates a new store credit repository
func NewStoreCreditRepository(db *gorm.DB) domainRepo.StoreCreditRepository {
	return &storeCreditRepository{db: db}
}

func (r *storeCreditRepository) Create(ctx context.Context, credit *entity.StoreCredit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *storeCreditRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StoreCredit, error) {
	var credit entity.StoreCredit
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Usages").
		First(&credit, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &credit, err
}

func (r *storeCreditRepository) GetByMemoNumber(ctx context.Context, memoNumber string) (*entity.StoreCredit, error) {
	var credit entity.StoreCredit
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Usages").
		First(&credit, "memo_number = ?", memoNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &credit, err
}

func (r *storeCreditRepository) List(ctx context.Context, params *domainRepo.CreditFilterParams) ([]entity.StoreCredit, int64, error) {
	var credits []entity.StoreCredit
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StoreCredit{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		query = query.Where("memo_number ILIKE ? OR customer_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Source != nil {
		query = query.Where("source = ?", *params.Source)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&credits).Error

	return credits, total, err
}

// applicableStatuses are the statuses from which a credit can still be drawn down.
var applicableStatuses = []enum.CreditStatus{
	enum.CreditStatusActive,
	enum.CreditStatusPartiallyUsed,
}

func (r *storeCreditRepository) Apply(ctx context.Context, id uuid.UUID, amount int64, usage *entity.StoreCreditUsage) (*entity.StoreCredit, error) {
	var updated entity.StoreCredit
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Single conditional UPDATE: the balance check, status check and
		// expiry check all ride on the WHERE clause, so a concurrent
		// application that drains the credit first makes this one match
		// zero rows instead of overdrawing.
		result := tx.Model(&entity.StoreCredit{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND remaining_balance >= ? AND status IN ?", id, amount, applicableStatuses).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Updates(map[string]interface{}{
				"remaining_balance": gorm.Expr("remaining_balance - ?", amount),
				"status": gorm.Expr("CASE WHEN remaining_balance - ? = 0 THEN ? ELSE ? END",
					amount, enum.CreditStatusFullyUsed, enum.CreditStatusPartiallyUsed),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Reload to tell the caller which precondition failed.
			var current entity.StoreCredit
			err := tx.Scopes(TenantScope(ctx)).First(&current, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Store credit")
			}
			if err != nil {
				return err
			}
			switch {
			// A drained credit is a balance problem, not a status one:
			// any positive draw exceeds its zero remaining balance.
			case current.Status == enum.CreditStatusFullyUsed:
				return apperror.NewInsufficientBalanceError("application amount exceeds remaining balance")
			case !current.Status.IsApplicable():
				return apperror.NewInvalidTransitionError("credit in status " + current.Status.String() + " cannot be applied")
			case current.IsExpired(now):
				return apperror.NewInvalidTransitionError("store credit has expired")
			default:
				return apperror.NewInsufficientBalanceError("application amount exceeds remaining balance")
			}
		}

		if err := tx.Scopes(TenantScope(ctx)).First(&updated, "id = ?", id).Error; err != nil {
			return err
		}

		usage.StoreCreditID = id
		usage.AmountUsed = amount
		usage.BalanceAfter = updated.RemainingBalance
		if usage.UsedAt.IsZero() {
			usage.UsedAt = now
		}
		return tx.Create(usage).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *storeCreditRepository) Void(ctx context.Context, id uuid.UUID, operatorID uuid.UUID, reason string) (*entity.StoreCredit, error) {
	var updated entity.StoreCredit
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.StoreCredit{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND status NOT IN ?", id,
				[]enum.CreditStatus{enum.CreditStatusFullyUsed, enum.CreditStatusVoided}).
			Updates(map[string]interface{}{
				"remaining_balance": 0,
				"status":            enum.CreditStatusVoided,
				"voided_by":         operatorID,
				"voided_at":         now,
				"void_reason":       reason,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var current entity.StoreCredit
			err := tx.Scopes(TenantScope(ctx)).First(&current, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Store credit")
			}
			if err != nil {
				return err
			}
			if current.Status == enum.CreditStatusVoided {
				return apperror.NewAlreadyResolvedError("store credit is already voided")
			}
			return apperror.NewInvalidTransitionError("a fully used credit cannot be voided")
		}

		return tx.Scopes(TenantScope(ctx)).First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *storeCreditRepository) LiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) ([]entity.StoreCredit, error) {
	var credits []entity.StoreCredit
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("customer_id = ? AND status IN ?", customerID, applicableStatuses).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at ASC").
		Find(&credits).Error
	return credits, err
}

// SweepExpired runs tenant-unscoped: it is invoked by the background
// expiry job on behalf of all tenants, not by a request.
func (r *storeCreditRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.StoreCredit{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?", applicableStatuses, now).
		Update("status", enum.CreditStatusExpired)
	return result.RowsAffected, result.Error
}
