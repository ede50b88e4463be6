package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CustomerBalance is the cached aggregate of a customer's applicable credit.
type CustomerBalance struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	TotalBalance int64     `json:"total_balance"` // cents
	CreditCount  int       `json:"credit_count"`
	ComputedAt   time.Time `json:"computed_at"`
}

// BalanceCache caches per-customer credit balances. The cache is an
// optimization only: every write path invalidates, and a miss falls
// back to the ledger, so a cold or unavailable cache never changes
// results.
type BalanceCache interface {
	Get(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalance, bool, error)
	Set(ctx context.Context, tenantID uuid.UUID, balance *CustomerBalance, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error
}

// NoopBalanceCache is used when Redis is disabled. Every lookup
// misses, so callers always recompute from the ledger.
type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(_ context.Context, _, _ uuid.UUID) (*CustomerBalance, bool, error) {
	return nil, false, nil
}

func (NoopBalanceCache) Set(_ context.Context, _ uuid.UUID, _ *CustomerBalance, _ time.Duration) error {
	return nil
}

func (NoopBalanceCache) Invalidate(_ context.Context, _, _ uuid.UUID) error {
	return nil
}
