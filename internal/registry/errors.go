package registry

import (
	"errors"
	"fmt"
)

// Common errors returned by registry clients.
var (
	// ErrNotFound indicates the registry has no record for the identifier.
	ErrNotFound = errors.New("not found in registry")

	// ErrRateLimited indicates the registry rejected the request with 429.
	ErrRateLimited = errors.New("registry rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with registry")

	// ErrInvalidResponse indicates an unexpected registry response.
	ErrInvalidResponse = errors.New("invalid response from registry")

	// ErrUnavailable indicates the retry budget was exhausted without a
	// successful response.
	ErrUnavailable = errors.New("registry unavailable")
)

// APIError represents a terminal (non-retryable) HTTP error from a registry.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry error (status %d): %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
