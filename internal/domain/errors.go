package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPropertyNotFound signals a filter or sort referencing an unknown property.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrUnsupportedOperator signals an operator not valid for the property type.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrInvalidDirection signals an unrecognized sort direction.
	ErrInvalidDirection = errors.New("invalid sort direction")
	// ErrInvalidLimit signals a non-positive result limit.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrRateLimited signals a rate limit hit reported by the server.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransient signals a retryable server-side failure.
	ErrTransient = errors.New("transient server error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPermission signals insufficient access to a resource.
	ErrPermission = errors.New("permission denied")
	// ErrBadRequest signals a request the server rejected as malformed.
	ErrBadRequest = errors.New("bad request")
)

// AttemptsError wraps the last failure after the retry budget is exhausted,
// preserving how many attempts were made.
type AttemptsError struct {
	Attempts int
	Last     error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *AttemptsError) Unwrap() error { return e.Last }

// NewAttemptsError creates an AttemptsError.
func NewAttemptsError(attempts int, last error) error {
	return &AttemptsError{Attempts: attempts, Last: last}
}
