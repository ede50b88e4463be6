package entity

import "time"

// ComplianceUnknown is the placeholder written into snapshot fields
// that could not be sourced from either the originating sale or the
// live product record.
const ComplianceUnknown = "UNKNOWN"

// ComplianceSnapshot is an immutable copy of the regulated attributes
// of a product, captured at a point in time. Sale items freeze one at
// sale time; return items copy it at return-creation time and never
// recompute it from the live product or sale record afterward.
type ComplianceSnapshot struct {
	BatchID         string     `gorm:"size:100" json:"batch_id"`
	StateTrackingID string     `gorm:"size:100" json:"state_tracking_id"`
	Category        string     `gorm:"size:100" json:"category"`
	StrainName      string     `gorm:"size:255" json:"strain_name"`
	THCMgPerUnit    float64    `json:"thc_mg_per_unit"`
	CBDMgPerUnit    float64    `json:"cbd_mg_per_unit"`
	UnitOfMeasure   string     `gorm:"size:50" json:"unit_of_measure"`
	UnitWeightGrams float64    `json:"unit_weight_grams"`
	Producer        string     `gorm:"size:255" json:"producer"`
	PackagedDate    *time.Time `json:"packaged_date,omitempty"`
	HarvestDate     *time.Time `json:"harvest_date,omitempty"`
	LabTestedDate   *time.Time `json:"lab_tested_date,omitempty"`
	LabTestStatus   string     `gorm:"size:50" json:"lab_test_status"`
}

// PlaceholderSnapshot returns a snapshot with every sourced field
// marked unknown, used when extraction fails for a line so the return
// can still be created.
func PlaceholderSnapshot() ComplianceSnapshot {
	return ComplianceSnapshot{
		BatchID:       ComplianceUnknown,
		Category:      ComplianceUnknown,
		Producer:      ComplianceUnknown,
		LabTestStatus: ComplianceUnknown,
	}
}
