package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by catalog implementations
var (
	// ErrNotFound indicates the media item or user does not exist
	ErrNotFound = errors.New("not found in catalog")

	// ErrRateLimited indicates the upstream rate limit has been exceeded
	ErrRateLimited = errors.New("catalog rate limit exceeded")

	// ErrAPIError indicates a general API error
	ErrAPIError = errors.New("catalog API error")

	// ErrNetworkError indicates a network connectivity issue
	ErrNetworkError = errors.New("network error communicating with catalog")

	// ErrInvalidResponse indicates an unexpected API response
	ErrInvalidResponse = errors.New("invalid response from catalog")

	// ErrInvalidMediaType is returned for searches outside ANIME and MANGA
	ErrInvalidMediaType = errors.New("media type must be ANIME or MANGA")
)

// APIError is a non-success HTTP status or a GraphQL error payload
type APIError struct {
	StatusCode int
	Message    string
	Operation  string // "media", "search", "user"
}

func (e *APIError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("catalog API error (status %d, %s): %s", e.StatusCode, e.Operation, e.Message)
	}
	return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ErrAPIError
func (e *APIError) Unwrap() error {
	return ErrAPIError
}

// IsNotFound returns true if the error indicates a missing resource
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

// IsRateLimited returns true if the error indicates rate limiting
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
