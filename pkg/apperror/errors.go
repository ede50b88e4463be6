package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error beyond its HTTP status code.
// Callers branch on kinds (retry decisions, operator follow-up) instead
// of matching message strings.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindInvalidTransition   Kind = "invalid_transition"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindAlreadyResolved     Kind = "already_resolved"
	KindExternalService     Kind = "external_service"
	KindInternal            Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindValidation, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindValidation, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates a new validation error from field errors
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message.
// Missing entities and entities owned by another tenant both surface
// through this error so existence never leaks across tenants.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewInvalidTransitionError signals an operation attempted from a
// workflow status that does not permit it.
func NewInvalidTransitionError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidTransition,
		Message: message,
	}
}

// NewAlreadyResolvedError signals an idempotency violation: the
// operation already took effect and must not be applied again.
func NewAlreadyResolvedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyResolved,
		Message: message,
	}
}

// NewInsufficientBalanceError signals a ledger application exceeding
// the remaining balance of a store credit.
func NewInsufficientBalanceError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInsufficientBalance,
		Message: message,
	}
}

// NewExternalServiceError wraps a failure from a remote collaborator.
// These are recoverable: they are recorded for manual follow-up and do
// not fail the local operation that triggered them.
func NewExternalServiceError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindExternalService,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
