package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Return reason taxonomy. The free-text detail lives in DetailedReason.
const (
	ReturnReasonDefective      = "defective_product"
	ReturnReasonWrongItem      = "wrong_item"
	ReturnReasonQualityIssue   = "quality_issue"
	ReturnReasonExpired        = "expired_product"
	ReturnReasonRecall         = "product_recall"
	ReturnReasonCustomerChange = "customer_changed_mind"
	ReturnReasonOther          = "other"
)

// ReturnRequest represents a product-return workflow (RMA). Status
// advances only through the transitions in the workflow package, and
// each transition is persisted with a compare-and-swap on the status
// column so concurrent mutually-exclusive transitions cannot both
// succeed. Once a terminal status is reached only internal notes,
// audit fields and disposal fields remain writable.
type ReturnRequest struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_returns_tenant_number,priority:1" json:"tenant_id"`
	ReturnNumber string            `gorm:"size:50;not null;uniqueIndex:ux_returns_tenant_number,priority:2" json:"return_number"`
	Type         enum.ReturnType   `gorm:"default:0" json:"type"`
	Status       enum.ReturnStatus `gorm:"default:0;index" json:"status"`

	SaleID        *uuid.UUID `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	SaleInvoiceNo string     `gorm:"size:100" json:"sale_invoice_no,omitempty"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`

	Reason         string `gorm:"size:100" json:"reason"`
	DetailedReason string `gorm:"type:text" json:"detailed_reason,omitempty"`
	InternalNotes  string `gorm:"type:text" json:"internal_notes,omitempty"`

	TotalValue int64 `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON

	// Approval / rejection
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *uuid.UUID `gorm:"type:uuid" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	// Receipt / inspection
	ReceivedBy       *uuid.UUID             `gorm:"type:uuid" json:"received_by,omitempty"`
	ReceivedAt       *time.Time             `json:"received_at,omitempty"`
	InspectedBy      *uuid.UUID             `gorm:"type:uuid" json:"inspected_by,omitempty"`
	InspectedAt      *time.Time             `json:"inspected_at,omitempty"`
	InspectionResult *enum.InspectionResult `json:"inspection_result,omitempty"`
	InspectionNotes  string                 `gorm:"type:text" json:"inspection_notes,omitempty"`

	// Resolution
	ResolutionType      *enum.ResolutionType `json:"resolution_type,omitempty"`
	ResolutionAmount    int64                `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ReplacementOrderRef string               `gorm:"size:100" json:"replacement_order_ref,omitempty"`
	CreditMemoNumber    string               `gorm:"size:50" json:"credit_memo_number,omitempty"`
	ResolvedBy          *uuid.UUID           `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time           `json:"resolved_at,omitempty"`

	// Close / cancel
	ClosedBy     *uuid.UUID `gorm:"type:uuid" json:"closed_by,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	CancelledBy  *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `gorm:"type:text" json:"cancel_reason,omitempty"`

	// Disposal. Local destruction fields are always persisted; the
	// regulator report outcome is best-effort (see the metrc package).
	DestructionMethod       string     `gorm:"size:100" json:"destruction_method,omitempty"`
	DisposalWitness         string     `gorm:"size:255" json:"disposal_witness,omitempty"`
	DisposalNotes           string     `gorm:"type:text" json:"disposal_notes,omitempty"`
	DestroyedWeightGrams    float64    `json:"destroyed_weight_grams,omitempty"`
	DestroyedTHCMg          float64    `json:"destroyed_thc_mg,omitempty"`
	DestroyedCBDMg          float64    `json:"destroyed_cbd_mg,omitempty"`
	ManifestNumber          string     `gorm:"size:50" json:"manifest_number,omitempty"`
	MetrcReported           bool       `gorm:"default:false" json:"metrc_reported"`
	RequiresManualReporting bool       `gorm:"default:false" json:"requires_manual_reporting"`
	MetrcError              string     `gorm:"type:text" json:"metrc_error,omitempty"`
	DestroyedBy             *uuid.UUID `gorm:"type:uuid" json:"destroyed_by,omitempty"`
	DestroyedAt             *time.Time `json:"destroyed_at,omitempty"`

	CreatedBy uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy uuid.UUID      `gorm:"type:uuid" json:"updated_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant       `gorm:"foreignKey:TenantID" json:"-"`
	Customer *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []ReturnItem `gorm:"foreignKey:ReturnRequestID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r ReturnRequest) MarshalJSON() ([]byte, error) {
	type Alias ReturnRequest
	return json.Marshal(&struct {
		Alias
		TotalValue       float64 `json:"total_value"`
		ResolutionAmount float64 `json:"resolution_amount"`
	}{
		Alias:            Alias(r),
		TotalValue:       float64(r.TotalValue) / 100,
		ResolutionAmount: float64(r.ResolutionAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new return request
func (r *ReturnRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnRequest model
func (ReturnRequest) TableName() string {
	return "return_requests"
}

// RecomputeTotal sets TotalValue to the sum of the line values.
// Invoked before every persistence that touches the item list.
func (r *ReturnRequest) RecomputeTotal() {
	var total int64
	for i := range r.Items {
		total += r.Items[i].LineValue
	}
	r.TotalValue = total
}

// ReturnItem is one returned line. The compliance snapshot is copied
// once at return-creation time and is write-once thereafter.
type ReturnItem struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ReturnRequestID uuid.UUID          `gorm:"type:uuid;not null;index" json:"return_request_id"`
	ProductID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"product_id"`
	SaleItemID      *uuid.UUID         `gorm:"type:uuid" json:"sale_item_id,omitempty"`
	Quantity        int                `gorm:"not null" json:"quantity"`
	UnitPrice       int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	LineValue       int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Condition       enum.ItemCondition `gorm:"default:0" json:"condition"`

	Compliance ComplianceSnapshot `gorm:"embedded;embeddedPrefix:compliance_" json:"compliance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	ReturnRequest ReturnRequest `gorm:"foreignKey:ReturnRequestID" json:"-"`
	Product       Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ri ReturnItem) MarshalJSON() ([]byte, error) {
	type Alias ReturnItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineValue float64 `json:"line_value"`
	}{
		Alias:     Alias(ri),
		UnitPrice: float64(ri.UnitPrice) / 100,
		LineValue: float64(ri.LineValue) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new return item
func (ri *ReturnItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnItem model
func (ReturnItem) TableName() string {
	return "return_items"
}
