package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quillhq/quill/internal/domain"
)

// APIError is a non-2xx response decoded into the service's problem shape.
// It unwraps to the domain sentinel matching its status class so callers can
// use errors.Is.
type APIError struct {
	Status     int
	Code       string
	Message    string
	retryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// RetryAfter returns the server-provided wait for rate-limited responses,
// zero otherwise.
func (e *APIError) RetryAfter() time.Duration { return e.retryAfter }

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.Status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return domain.ErrPermission
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return domain.ErrTransient
	default:
		return domain.ErrBadRequest
	}
}

// problem mirrors the JSON error body of the remote API.
type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAPIError decodes a non-2xx response body into an APIError.
func newAPIError(status int, body []byte, retryAfter time.Duration) *APIError {
	var p problem
	_ = json.Unmarshal(body, &p)
	if p.Message == "" {
		p.Message = http.StatusText(status)
	}
	return &APIError{
		Status:     status,
		Code:       p.Code,
		Message:    p.Message,
		retryAfter: retryAfter,
	}
}
