// Package llm defines the contract consumed by the policy gate and the
// response synthesizer. Both build a deterministic instruction template
// around their inputs and parse the returned text themselves; the client
// is a thin transport.
package llm

import "context"

// Client is a handle to a hosted language-model service, safe for
// concurrent use.
type Client interface {
	// Name returns the provider name (e.g. "gemini")
	Name() string

	// Generate sends a single prompt and returns the raw model text.
	// No retries are performed beyond transport-level reconnects;
	// failures surface immediately to the calling stage.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientError represents an error from the model service
type ClientError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// NewClientError creates a new client error
func NewClientError(provider, code, message string, statusCode int, cause error) *ClientError {
	return &ClientError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
