package repository

import (
	"context"

	"github.com/google/uuid"
)

// SequenceRepository allocates tenant-scoped, time-bucketed sequence
// numbers. Next is an atomic increment-and-fetch on the per-bucket
// counter, safe under concurrent allocation in the same bucket.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, prefix, bucket string) (int64, error)
}
