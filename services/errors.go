package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypePolicyDenial ErrorType = "policy_denial"
	ErrorTypeGate         ErrorType = "gate"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeSynthesis    ErrorType = "synthesis"
	ErrorTypeAudit        ErrorType = "audit"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	// ErrMissingQuestion is returned before the gate runs; empty input is
	// a request-validation failure, not a policy decision.
	ErrMissingQuestion = NewDomainError(ErrorTypeValidation, "question is required", nil)

	ErrEmptyDecision = NewDomainError(ErrorTypeGate, "allowed decision carried no usable query", nil)
)

// NewValidationError creates a request-validation error
func NewValidationError(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, err)
}

// NewPolicyDenial creates a denial carrying the gate's human-readable
// reason; the reason is the informative payload and is surfaced verbatim.
func NewPolicyDenial(reason string) *DomainError {
	return NewDomainError(ErrorTypePolicyDenial, reason, nil)
}

// NewGateError wraps a classifier call or parse failure
func NewGateError(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeGate, message, err)
}

// NewExecutionError wraps a data-store failure, preserving the store's
// native error text for diagnostics
func NewExecutionError(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeExecution, message, err)
}

// NewSynthesisError wraps a synthesis model-call failure
func NewSynthesisError(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeSynthesis, message, err)
}

// NewAuditWriteError wraps an audit persistence failure; internal-only,
// never surfaced to callers
func NewAuditWriteError(message string, err error) *DomainError {
	return NewDomainError(ErrorTypeAudit, message, err)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsPolicyDenial checks if an error is a policy denial
func IsPolicyDenial(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypePolicyDenial
	}
	return false
}

// IsGateError checks if an error is a gate error
func IsGateError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeGate
	}
	return false
}

// IsExecutionError checks if an error is an execution error
func IsExecutionError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExecution
	}
	return false
}

// IsSynthesisError checks if an error is a synthesis error
func IsSynthesisError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeSynthesis
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string
// if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if
// not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// DenialReason returns the gate's reason for a policy denial, or empty
// string for other errors
func DenialReason(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Type == ErrorTypePolicyDenial {
		return domainErr.Message
	}
	return ""
}
