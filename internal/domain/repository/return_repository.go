package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/pkg/pagination"
)

// ReturnFilterParams represents filter parameters for listing returns
type ReturnFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.ReturnStatus
	Type       *enum.ReturnType
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// ReturnRepository defines the interface for return request data access.
// All queries are tenant-scoped through the context.
type ReturnRepository interface {
	Create(ctx context.Context, request *entity.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReturnRequest, error)
	GetByNumber(ctx context.Context, number string) (*entity.ReturnRequest, error)
	List(ctx context.Context, params *ReturnFilterParams) ([]entity.ReturnRequest, int64, error)

	// TransitionStatus performs a compare-and-swap: the row is updated
	// only if its status still equals from. Returns false when another
	// writer got there first (or the row does not exist for this
	// tenant), so mutually exclusive transitions can never both land.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.ReturnStatus, updates map[string]interface{}) (bool, error)

	// MarkDestroyed writes the disposal fields only if the row is still
	// in the given status and has never been destroyed. Returns false
	// when a concurrent destruction (or transition) got there first.
	MarkDestroyed(ctx context.Context, id uuid.UUID, status enum.ReturnStatus, updates map[string]interface{}) (bool, error)

	// UpdateFields writes the given columns without a status guard.
	// Reserved for fields that stay writable in any status: internal
	// notes, audit fields and disposal outcome fields.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}
