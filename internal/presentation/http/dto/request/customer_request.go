package request

// CreateCustomerRequest represents a customer registration request
type CreateCustomerRequest struct {
	Name  string  `json:"name" binding:"required,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
}
