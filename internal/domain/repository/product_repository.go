package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
)

// ProductRepository provides read-only access to the product catalog
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
}
