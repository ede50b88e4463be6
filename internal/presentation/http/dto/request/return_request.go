package request

import "github.com/google/uuid"

// ReturnItemRequest represents one line of a return creation request
type ReturnItemRequest struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	SaleItemID *uuid.UUID `json:"sale_item_id"`
	Quantity   int        `json:"quantity" binding:"required,min=1"`
	Condition  string     `json:"condition" binding:"required"`
}

// CreateReturnRequest represents a return creation request
type CreateReturnRequest struct {
	Type           string              `json:"type" binding:"required"`
	SaleID         *uuid.UUID          `json:"sale_id"`
	SaleInvoiceNo  string              `json:"sale_invoice_no" binding:"omitempty,max=100"`
	CustomerID     *uuid.UUID          `json:"customer_id"`
	Reason         string              `json:"reason" binding:"required,max=100"`
	DetailedReason string              `json:"detailed_reason"`
	Items          []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RejectReturnRequest represents a rejection request
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CompleteInspectionRequest represents an inspection completion request
type CompleteInspectionRequest struct {
	Result string `json:"result" binding:"required"`
	Notes  string `json:"notes"`
}

// ResolveReturnRequest represents a resolution request. A zero amount
// means the full assessed value of the return.
type ResolveReturnRequest struct {
	ResolutionType         string  `json:"resolution_type" binding:"required"`
	Amount                 float64 `json:"amount" binding:"min=0"`
	ReplacementOrderRef    string  `json:"replacement_order_ref" binding:"omitempty,max=100"`
	CreditExpirationMonths int     `json:"credit_expiration_months" binding:"min=0"`
}

// CancelReturnRequest represents a cancellation request
type CancelReturnRequest struct {
	Reason string `json:"reason"`
}

// UpdateNotesRequest represents an internal notes update
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// DestroyReturnRequest represents a destruction recording request
type DestroyReturnRequest struct {
	Method  string `json:"method" binding:"required,max=100"`
	Witness string `json:"witness" binding:"required,max=255"`
	Notes   string `json:"notes"`
}
