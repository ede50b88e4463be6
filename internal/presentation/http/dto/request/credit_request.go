package request

import "github.com/google/uuid"

// IssueCreditRequest represents a manual credit issuance request
type IssueCreditRequest struct {
	CustomerID       uuid.UUID `json:"customer_id" binding:"required"`
	Amount           float64   `json:"amount" binding:"required,gt=0"`
	Source           string    `json:"source"`
	ExpirationMonths int       `json:"expiration_months" binding:"min=0"`
}

// ApplyCreditRequest represents one application of credit at a register
type ApplyCreditRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	RegisterRef string  `json:"register_ref" binding:"omitempty,max=100"`
	PaymentRef  string  `json:"payment_ref" binding:"omitempty,max=100"`
}

// VoidCreditRequest represents a credit void request
type VoidCreditRequest struct {
	Reason string `json:"reason" binding:"required"`
}
