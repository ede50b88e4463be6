package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog item carrying the current regulated
// attributes. The catalog is a read-only collaborator here: it is the
// fallback source for compliance snapshots when a return has no sale
// reference, and is never mutated by this service.
type Product struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	SKU             string         `gorm:"size:100;index" json:"sku"`
	Price           int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	BatchID         string         `gorm:"size:100" json:"batch_id"`
	StateTrackingID string         `gorm:"size:100" json:"state_tracking_id"`
	Category        string         `gorm:"size:100" json:"category"`
	StrainName      string         `gorm:"size:255" json:"strain_name"`
	THCMgPerUnit    float64        `json:"thc_mg_per_unit"`
	CBDMgPerUnit    float64        `json:"cbd_mg_per_unit"`
	UnitOfMeasure   string         `gorm:"size:50" json:"unit_of_measure"`
	UnitWeightGrams float64        `json:"unit_weight_grams"`
	Producer        string         `gorm:"size:255" json:"producer"`
	PackagedDate    *time.Time     `json:"packaged_date,omitempty"`
	HarvestDate     *time.Time     `json:"harvest_date,omitempty"`
	LabTestedDate   *time.Time     `json:"lab_tested_date,omitempty"`
	LabTestStatus   string         `gorm:"size:50" json:"lab_test_status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(p),
		Price: float64(p.Price) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Snapshot copies the product's current regulated attributes into a
// compliance snapshot. Used only as the fallback path; sale-time
// snapshots are preferred because they were frozen at sale.
func (p *Product) Snapshot() ComplianceSnapshot {
	return ComplianceSnapshot{
		BatchID:         p.BatchID,
		StateTrackingID: p.StateTrackingID,
		Category:        p.Category,
		StrainName:      p.StrainName,
		THCMgPerUnit:    p.THCMgPerUnit,
		CBDMgPerUnit:    p.CBDMgPerUnit,
		UnitOfMeasure:   p.UnitOfMeasure,
		UnitWeightGrams: p.UnitWeightGrams,
		Producer:        p.Producer,
		PackagedDate:    p.PackagedDate,
		HarvestDate:     p.HarvestDate,
		LabTestedDate:   p.LabTestedDate,
		LabTestStatus:   p.LabTestStatus,
	}
}
