package metrc

import (
	"context"
	"time"
)

// DestructionRecord describes one destroyed line reported to the state
// track-and-trace system. Only lines carrying a state tracking id are
// reportable; lines without one are destroyed locally and excluded.
type DestructionRecord struct {
	TrackingID      string    `json:"tracking_id"`
	Quantity        int       `json:"quantity"`
	UnitOfMeasure   string    `json:"unit_of_measure"`
	WeightGrams     float64   `json:"weight_grams"`
	DestructionDate time.Time `json:"destruction_date"`
	Reason          string    `json:"reason"`
	Method          string    `json:"method"`
}

// ReportResult is the outcome of a destruction report submission.
// AdjustmentID is the regulator-side identifier for the adjustment,
// opaque to this service.
type ReportResult struct {
	AdjustmentID string `json:"adjustment_id"`
	Accepted     int    `json:"accepted"`
}

// Reporter submits destruction records to the regulator. Implementations
// must honor the context deadline; callers never hold entity locks
// across a Report call.
type Reporter interface {
	Report(ctx context.Context, records []DestructionRecord) (*ReportResult, error)
}
