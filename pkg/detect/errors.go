package detect

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoEndpoint is returned when the endpoint URL is missing.
	ErrNoEndpoint = errors.New("detect: endpoint URL required")

	// ErrEmptyImage is returned when Detect is called with no image bytes.
	ErrEmptyImage = errors.New("detect: empty image")
)

// APIError represents a non-200 response from the inference API.
// The response body is never parsed for these; only the status code is kept.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("detect: API error %d", e.StatusCode)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// TransportError wraps a network, timeout, or decoding failure.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("detect: transport: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// wrapTransport wraps an error as a TransportError.
func wrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Err: err}
}
