package api

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the client.
var (
	// ErrUnauthorized means the request was rejected even after the single
	// token-refresh replay.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCredentials means neither an API key nor a login token is set.
	ErrNoCredentials = errors.New("no credentials configured")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.Status)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Message)
}

// StreamError is an in-band failure detected inside an otherwise-success
// streamed response.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}
