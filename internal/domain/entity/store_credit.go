package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/enum"
	"gorm.io/gorm"
)

// StoreCredit is a ledger record of credit owed to a customer.
// Invariant: RemainingBalance == OriginalAmount - sum of usage amounts,
// and RemainingBalance never goes negative. Balance mutation happens
// only through the repository's atomic apply/void operations.
type StoreCredit struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_credits_tenant_memo,priority:1" json:"tenant_id"`
	MemoNumber string    `gorm:"size:50;not null;uniqueIndex:ux_credits_tenant_memo,priority:2" json:"memo_number"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	// Contact details are snapshotted at issuance so receipts stay
	// stable if the customer record changes later.
	CustomerName  string `gorm:"size:255" json:"customer_name"`
	CustomerEmail string `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone,omitempty"`

	OriginalAmount   int64 `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	RemainingBalance int64 `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON

	Status enum.CreditStatus `gorm:"default:0;index" json:"status"`
	Source enum.CreditSource `gorm:"default:0" json:"source"`

	ReturnRequestID *uuid.UUID `gorm:"type:uuid;index" json:"return_request_id,omitempty"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	VoidedBy   *uuid.UUID `gorm:"type:uuid" json:"voided_by,omitempty"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidReason string     `gorm:"type:text" json:"void_reason,omitempty"`

	IssuedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"issued_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant             `gorm:"foreignKey:TenantID" json:"-"`
	Customer Customer           `gorm:"foreignKey:CustomerID" json:"-"`
	Usages   []StoreCreditUsage `gorm:"foreignKey:StoreCreditID" json:"usages,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (sc StoreCredit) MarshalJSON() ([]byte, error) {
	type Alias StoreCredit
	return json.Marshal(&struct {
		Alias
		OriginalAmount   float64 `json:"original_amount"`
		RemainingBalance float64 `json:"remaining_balance"`
	}{
		Alias:            Alias(sc),
		OriginalAmount:   float64(sc.OriginalAmount) / 100,
		RemainingBalance: float64(sc.RemainingBalance) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new store credit
func (sc *StoreCredit) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StoreCredit model
func (StoreCredit) TableName() string {
	return "store_credits"
}

// IsExpired reports whether the credit's expiration has passed
func (sc *StoreCredit) IsExpired(now time.Time) bool {
	return sc.ExpiresAt != nil && !sc.ExpiresAt.After(now)
}

// StoreCreditUsage is one application of credit to a payment. Usage
// history is append-only: rows are never edited or removed.
type StoreCreditUsage struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StoreCreditID uuid.UUID `gorm:"type:uuid;not null;index" json:"store_credit_id"`
	AmountUsed    int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	BalanceAfter  int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	OperatorID    uuid.UUID `gorm:"type:uuid;not null" json:"operator_id"`
	RegisterRef   string    `gorm:"size:100" json:"register_ref,omitempty"`
	PaymentRef    string    `gorm:"size:100" json:"payment_ref,omitempty"`
	UsedAt        time.Time `gorm:"not null" json:"used_at"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	StoreCredit StoreCredit `gorm:"foreignKey:StoreCreditID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (u StoreCreditUsage) MarshalJSON() ([]byte, error) {
	type Alias StoreCreditUsage
	return json.Marshal(&struct {
		Alias
		AmountUsed   float64 `json:"amount_used"`
		BalanceAfter float64 `json:"balance_after"`
	}{
		Alias:        Alias(u),
		AmountUsed:   float64(u.AmountUsed) / 100,
		BalanceAfter: float64(u.BalanceAfter) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new usage record
func (u *StoreCreditUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StoreCreditUsage model
func (StoreCreditUsage) TableName() string {
	return "store_credit_usages"
}
