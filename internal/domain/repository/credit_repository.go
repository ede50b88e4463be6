package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/pkg/pagination"
)

// CreditFilterParams represents filter parameters for listing credits
type CreditFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.CreditStatus
	Source     *enum.CreditSource
	CustomerID *uuid.UUID
}

// StoreCreditRepository defines the interface for store credit data
// access. Balance mutation goes exclusively through Apply and Void,
// which are atomic read-modify-write operations: two concurrent
// applications can never overdraw a credit.
type StoreCreditRepository interface {
	Create(ctx context.Context, credit *entity.StoreCredit) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StoreCredit, error)
	GetByMemoNumber(ctx context.Context, memoNumber string) (*entity.StoreCredit, error)
	List(ctx context.Context, params *CreditFilterParams) ([]entity.StoreCredit, int64, error)

	// Apply decrements the balance and appends the usage record in one
	// transaction. The decrement is conditional on sufficient balance,
	// an applicable status and an unexpired credit; failures surface as
	// apperror kinds the caller can pass through.
	Apply(ctx context.Context, id uuid.UUID, amount int64, usage *entity.StoreCreditUsage) (*entity.StoreCredit, error)

	// Void zeroes the balance and marks the credit voided. Fails on a
	// fully used credit and on a credit that is already voided.
	Void(ctx context.Context, id uuid.UUID, operatorID uuid.UUID, reason string) (*entity.StoreCredit, error)

	// LiveByCustomer returns the customer's credits that can still be
	// applied: active or partially used, with no expiration or one in
	// the future.
	LiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) ([]entity.StoreCredit, error)

	// SweepExpired flips every applicable credit whose expiration has
	// passed to expired. Idempotent; returns the number flipped.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
