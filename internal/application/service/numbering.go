package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/repository"
)

// Document number prefixes. Numbers are unique per tenant and reset
// each calendar month, e.g. RMA-202608-0042.
const (
	prefixReturn   = "RMA"
	prefixMemo     = "CM"
	prefixManifest = "DM"
)

func nextDocumentNumber(ctx context.Context, seq repository.SequenceRepository, tenantID uuid.UUID, prefix string, now time.Time) (string, error) {
	bucket := now.Format("200601")
	value, err := seq.Next(ctx, tenantID, prefix, bucket)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, bucket, value), nil
}
