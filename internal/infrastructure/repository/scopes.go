package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// TenantIDKey is the context key for tenant ID
const TenantIDKey ctxKey = "tenant_id"

// TenantScope returns a GORM scope that filters by tenant. Every query
// against tenant-owned entities goes through this single scope, so no
// call site can forget the tenant filter. If the tenant is missing
// from the context the scope fails safe and matches nothing, which
// also keeps cross-tenant lookups indistinguishable from missing rows.
func TenantScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
		if !ok || tenantID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// WithTenant adds tenant ID to context
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}
