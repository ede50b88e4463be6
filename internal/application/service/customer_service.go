package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/repository"
	infraRepo "github.com/greenbush/returns-api/internal/infrastructure/repository"
	"github.com/greenbush/returns-api/pkg/apperror"
	"github.com/greenbush/returns-api/pkg/pagination"
)

// CustomerService handles customer lookups and registration
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name  string
	Email *string
	Phone *string
}

// CreateCustomer registers a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.Name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "name", Message: "name is required"},
		})
	}

	customer := &entity.Customer{
		TenantID: tenantID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers with an optional name/contact search
func (s *CustomerService) ListCustomers(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Customer, int64, error) {
	return s.customerRepo.List(ctx, search, params)
}
