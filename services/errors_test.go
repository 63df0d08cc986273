package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_ErrorString(t *testing.T) {
	err := NewExecutionError("fleet read failed", errors.New("connection reset"))
	assert.Contains(t, err.Error(), "execution")
	assert.Contains(t, err.Error(), "fleet read failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewGateError("classifier call failed", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestDomainError_IsMatchesByType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("question is required", nil))
	assert.True(t, errors.Is(err, ErrMissingQuestion))
}

func TestTypeCheckers(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("bad", nil)))
	assert.True(t, IsPolicyDenial(NewPolicyDenial("no")))
	assert.True(t, IsGateError(NewGateError("bad", nil)))
	assert.True(t, IsExecutionError(NewExecutionError("bad", nil)))
	assert.True(t, IsSynthesisError(NewSynthesisError("bad", nil)))

	assert.False(t, IsPolicyDenial(NewGateError("bad", nil)))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestDenialReason(t *testing.T) {
	reason := "Disallowed query: requests pilot email address."
	assert.Equal(t, reason, DenialReason(NewPolicyDenial(reason)))
	assert.Empty(t, DenialReason(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := NewGateError("unknown status", nil).WithDetail("status", "maybe")
	details := GetErrorDetails(err)
	assert.Equal(t, "maybe", details["status"])
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeExecution, GetErrorType(NewExecutionError("x", nil)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}
