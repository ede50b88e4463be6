package metrc

import (
	"context"
	"time"
)

// NoopReporter accepts every report without talking to the regulator.
// Used when reporting is disabled in configuration.
type NoopReporter struct{}

// NewNoopReporter creates a reporter that records nothing
func NewNoopReporter() *NoopReporter {
	return &NoopReporter{}
}

// Report returns a synthetic accepted result
func (NoopReporter) Report(_ context.Context, records []DestructionRecord) (*ReportResult, error) {
	return &ReportResult{
		AdjustmentID: "noop-" + time.Now().UTC().Format("20060102150405"),
		Accepted:     len(records),
	}, nil
}
