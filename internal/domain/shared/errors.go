package shared

import "fmt"

// ErrorKind classifies domain errors so callers can decide how to surface them.
type ErrorKind string

const (
	// KindValidation marks malformed or out-of-range user input. These are
	// expected conditions the caller surfaces back to the user.
	KindValidation ErrorKind = "VALIDATION"

	// KindInvariant marks a business-rule violation that must be rejected
	// before any persistence side effect.
	KindInvariant ErrorKind = "INVARIANT"

	// KindConfigurationGap marks missing or unknown reference data (unknown
	// tier, missing rate schedule). The engine degrades to the safest
	// default, but the caller should flag the gap as a data-quality issue.
	KindConfigurationGap ErrorKind = "CONFIGURATION_GAP"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows errors.Is matching on code, ignoring the message text.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(code, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInvariantViolation creates an invariant-violation error with a formatted message
func NewInvariantViolation(code, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInvariant, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewConfigurationGap creates a configuration-gap error with a formatted message
func NewConfigurationGap(code, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindConfigurationGap, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
