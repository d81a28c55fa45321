package providers

import (
	"errors"
	"fmt"
)

type ErrorCategory string

// Error categories for classification and handling
const (
	// ErrCapacity is returned when the provider has insufficient hardware
	// capacity for the requested type. The only retryable category.
	ErrCapacity ErrorCategory = "insufficient_capacity"

	// ErrPermission is returned when API access is denied
	ErrPermission ErrorCategory = "permission_denied"

	// ErrValidation is returned for invalid input (bad type name, instance
	// in a state that forbids the operation, ...)
	ErrValidation ErrorCategory = "validation_error"

	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound ErrorCategory = "not_found"

	// ErrThrottling is returned when the provider throttles the request
	ErrThrottling ErrorCategory = "request_throttled"

	// ErrInternal is returned for unexpected internal errors
	ErrInternal ErrorCategory = "internal_error"
)

// Error represents a failed provider operation with enough context to
// decide whether the operation is worth retrying.
type Error struct {
	// Category for programmatic error handling
	Category ErrorCategory

	// InstanceID identifies the instance the operation targeted, when applicable
	InstanceID string

	// Message provides human-readable details
	Message string

	// Underlying is the wrapped cause of this error
	Underlying error
}

// Error returns a formatted error message
func (e *Error) Error() string {
	if e.InstanceID != "" {
		return fmt.Sprintf("%s: %s [instance: %s]", e.Category, e.Message, e.InstanceID)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a new provider error with the specified details
func NewError(category ErrorCategory, instanceID, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		InstanceID: instanceID,
		Message:    message,
		Underlying: underlying,
	}
}

// IsErrorCategory checks if an error belongs to a specific error category
func IsErrorCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Category == category
	}

	return false
}

// IsCapacityError reports whether err is a capacity-class failure.
func IsCapacityError(err error) bool {
	return IsErrorCategory(err, ErrCapacity)
}

// CategoryOf extracts the category from a classified error, or ErrInternal
// when the error was never classified.
func CategoryOf(err error) ErrorCategory {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Category
	}
	return ErrInternal
}
