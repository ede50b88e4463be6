package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/internal/domain/repository"
	"github.com/greenbush/returns-api/internal/infrastructure/cache"
	infraRepo "github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/pkg/apperror"
	"go.uber.org/zap"
)

const balanceCacheTTL = 5 * time.Minute

// CreditService handles store credit issuance and the ledger operations
type CreditService struct {
	creditRepo   repository.StoreCreditRepository
	customerRepo repository.CustomerRepository
	sequenceRepo repository.SequenceRepository
	balanceCache cache.BalanceCache
	logger       *zap.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(
	creditRepo repository.StoreCreditRepository,
	customerRepo repository.CustomerRepository,
	sequenceRepo repository.SequenceRepository,
	balanceCache cache.BalanceCache,
	logger *zap.Logger,
) *CreditService {
	return &CreditService{
		creditRepo:   creditRepo,
		customerRepo: customerRepo,
		sequenceRepo: sequenceRepo,
		balanceCache: balanceCache,
		logger:       logger,
	}
}

// IssueCreditInput represents the issue credit input. AmountCents must
// be strictly positive.
type IssueCreditInput struct {
	UserID           uuid.UUID
	CustomerID       uuid.UUID
	AmountCents      int64
	Source           enum.CreditSource
	ReturnRequestID  *uuid.UUID
	ExpirationMonths int
}

// IssueCredit creates a new store credit with a full remaining balance
func (s *CreditService) IssueCredit(ctx context.Context, input *IssueCreditInput) (*entity.StoreCredit, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.AmountCents <= 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "amount", Message: "amount must be greater than zero"},
		})
	}
	if input.ExpirationMonths < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "expiration_months", Message: "expiration months cannot be negative"},
		})
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	now := time.Now()
	memoNumber, err := nextDocumentNumber(ctx, s.sequenceRepo, tenantID, prefixMemo, now)
	if err != nil {
		return nil, err
	}

	credit := &entity.StoreCredit{
		TenantID:         tenantID,
		MemoNumber:       memoNumber,
		CustomerID:       customer.ID,
		CustomerName:     customer.Name,
		OriginalAmount:   input.AmountCents,
		RemainingBalance: input.AmountCents,
		Status:           enum.CreditStatusActive,
		Source:           input.Source,
		ReturnRequestID:  input.ReturnRequestID,
		IssuedBy:         input.UserID,
	}
	if customer.Email != nil {
		credit.CustomerEmail = *customer.Email
	}
	if customer.Phone != nil {
		credit.CustomerPhone = *customer.Phone
	}
	if input.ExpirationMonths > 0 {
		expiresAt := now.AddDate(0, input.ExpirationMonths, 0)
		credit.ExpiresAt = &expiresAt
	}

	if err := s.creditRepo.Create(ctx, credit); err != nil {
		return nil, err
	}

	s.invalidateBalance(ctx, tenantID, customer.ID)

	s.logger.Info("store credit issued",
		zap.String("memo_number", credit.MemoNumber),
		zap.String("customer_id", customer.ID.String()),
		zap.Int64("amount_cents", credit.OriginalAmount))

	return credit, nil
}

// ApplyCreditInput represents one application of credit to a payment
type ApplyCreditInput struct {
	OperatorID  uuid.UUID
	AmountCents int64
	RegisterRef string
	PaymentRef  string
}

// ApplyCredit draws down a credit's balance and appends the usage
// record. The decrement and the append happen in one transaction in
// the repository, so a concurrent application can never overdraw.
func (s *CreditService) ApplyCredit(ctx context.Context, id uuid.UUID, input *ApplyCreditInput) (*entity.StoreCredit, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.AmountCents <= 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "amount", Message: "amount must be greater than zero"},
		})
	}

	usage := &entity.StoreCreditUsage{
		OperatorID:  input.OperatorID,
		RegisterRef: input.RegisterRef,
		PaymentRef:  input.PaymentRef,
	}

	credit, err := s.creditRepo.Apply(ctx, id, input.AmountCents, usage)
	if err != nil {
		return nil, err
	}

	s.invalidateBalance(ctx, tenantID, credit.CustomerID)

	return credit, nil
}

// VoidCredit zeroes a credit's balance and marks it voided
func (s *CreditService) VoidCredit(ctx context.Context, id uuid.UUID, operatorID uuid.UUID, reason string) (*entity.StoreCredit, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if reason == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "reason", Message: "void reason is required"},
		})
	}

	credit, err := s.creditRepo.Void(ctx, id, operatorID, reason)
	if err != nil {
		return nil, err
	}

	s.invalidateBalance(ctx, tenantID, credit.CustomerID)

	s.logger.Info("store credit voided",
		zap.String("memo_number", credit.MemoNumber),
		zap.String("voided_by", operatorID.String()))

	return credit, nil
}

// GetCredit retrieves a credit by ID
func (s *CreditService) GetCredit(ctx context.Context, id uuid.UUID) (*entity.StoreCredit, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, apperror.NewNotFoundError("Store credit")
	}
	return credit, nil
}

// GetCreditByMemoNumber retrieves a credit by memo number
func (s *CreditService) GetCreditByMemoNumber(ctx context.Context, memoNumber string) (*entity.StoreCredit, error) {
	credit, err := s.creditRepo.GetByMemoNumber(ctx, memoNumber)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, apperror.NewNotFoundError("Store credit")
	}
	return credit, nil
}

// ListCredits lists credits with filters
func (s *CreditService) ListCredits(ctx context.Context, params *repository.CreditFilterParams) ([]entity.StoreCredit, int64, error) {
	return s.creditRepo.List(ctx, params)
}

// CustomerBalance returns the customer's aggregate applicable balance.
// Served from cache when warm; recomputed from live credits otherwise.
func (s *CreditService) CustomerBalance(ctx context.Context, customerID uuid.UUID) (*cache.CustomerBalance, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if cached, hit, err := s.balanceCache.Get(ctx, tenantID, customerID); err == nil && hit {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("balance cache read failed", zap.Error(err))
	}

	credits, err := s.creditRepo.LiveByCustomer(ctx, customerID, time.Now())
	if err != nil {
		return nil, err
	}

	balance := &cache.CustomerBalance{
		CustomerID:  customerID,
		CreditCount: len(credits),
		ComputedAt:  time.Now(),
	}
	for i := range credits {
		balance.TotalBalance += credits[i].RemainingBalance
	}

	if err := s.balanceCache.Set(ctx, tenantID, balance, balanceCacheTTL); err != nil {
		s.logger.Warn("balance cache write failed", zap.Error(err))
	}

	return balance, nil
}

// LiveCredits returns the credits currently contributing to the
// customer's balance, oldest first. Always read fresh; only the
// aggregate total is cached.
func (s *CreditService) LiveCredits(ctx context.Context, customerID uuid.UUID) ([]entity.StoreCredit, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return s.creditRepo.LiveByCustomer(ctx, customerID, time.Now())
}

// SweepExpired flips applicable credits past their expiration to
// expired. Called by the background job; idempotent.
func (s *CreditService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.creditRepo.SweepExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired store credits swept", zap.Int64("count", count))
	}
	return count, nil
}

func (s *CreditService) invalidateBalance(ctx context.Context, tenantID, customerID uuid.UUID) {
	if err := s.balanceCache.Invalidate(ctx, tenantID, customerID); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}
}
