package entity

import "github.com/google/uuid"

// SequenceCounter backs tenant-scoped, time-bucketed human-readable
// numbering (RMA-YYYYMM-NNNN, CM-YYYYMM-NNNN, DM-YYYYMM-NNNN). The
// value advances through an atomic upsert so concurrent allocations in
// the same bucket never observe the same number.
type SequenceCounter struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix   string    `gorm:"size:10;primaryKey"`
	Bucket   string    `gorm:"size:10;primaryKey"` // YYYYMM
	Value    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for the SequenceCounter model
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
