package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
)

// SaleRepository provides read-only access to originating sale records
type SaleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
}
