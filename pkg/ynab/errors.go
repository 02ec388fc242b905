package ynab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/ynabsync/internal/types"
)

// Sentinel errors shared with the transport layer so errors.Is works
// across package boundaries.
var (
	// ErrNotAuthenticated is returned when no access token is available
	ErrNotAuthenticated = types.ErrNotAuthenticated

	// ErrForbidden is returned when the token lacks access to a resource
	ErrForbidden = types.ErrForbidden

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = types.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = types.ErrTimeout

	// ErrNotFound is returned when resource not found
	ErrNotFound = types.ErrNotFound

	// ErrConflict is returned when a write collides with existing data
	ErrConflict = types.ErrConflict

	// ErrServerError is returned for server errors
	ErrServerError = types.ErrServerError

	// ErrBudgetNotFound is returned when a budget name cannot be resolved
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrUnexpectedStatus is returned when a write succeeds with a status
	// other than the one the endpoint documents
	ErrUnexpectedStatus = types.ErrUnexpectedStatus
)

// Error represents an API error
type Error = types.Error

// ErrorDetail is the error object of a failed response
type ErrorDetail = types.ErrorDetail

// SchemaError reports a response that does not match the expected shape
type SchemaError struct {
	Type       string   `json:"type"`
	Missing    []string `json:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("schema mismatch for %s: %s", e.Type, strings.Join(parts, "; "))
}

// NewError creates a new API error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrForbidden)
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}
