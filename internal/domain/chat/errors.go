package chat

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError means no asset id could be resolved from any source.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ValidationError means the client request is malformed or lacks a user message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamUnavailableError wraps a transport failure or timeout talking to the backend.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned when the backend answers with a status >= 400.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps an error from the chat pipeline onto the HTTP status used
// for pre-stream failures.
func StatusCode(err error) int {
	var (
		cfgErr      *ConfigurationError
		validErr    *ValidationError
		unavailErr  *UpstreamUnavailableError
		upstreamErr *UpstreamError
	)

	switch {
	case errors.As(err, &validErr), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailErr), errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsUpstream reports whether err came from talking to the backend.
func IsUpstream(err error) bool {
	var (
		unavailErr  *UpstreamUnavailableError
		upstreamErr *UpstreamError
	)
	return errors.As(err, &unavailErr) || errors.As(err, &upstreamErr)
}
