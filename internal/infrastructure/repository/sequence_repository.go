package repository

import (
	"context"

	"github.com/google/uuid"
	domainRepo "github.com/greenbush/returns-api/internal/domain/repository"
	"gorm.io/gorm"
)

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence counter repository
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next allocates the next value for the (tenant, prefix, bucket)
// counter. The upsert increments and returns in one statement, so two
// concurrent allocations in the same bucket always get distinct values.
func (r *sequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, prefix, bucket string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (tenant_id, prefix, bucket, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (tenant_id, prefix, bucket)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`,
		tenantID, prefix, bucket,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
