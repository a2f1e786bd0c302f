package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotInitialized is returned for requests issued before the client is
// initialized or after it has been closed.
var ErrNotInitialized = errors.New("client must be initialized before making requests")

// Default messages for the statuses the marketplace is known to return.
// Used when the server response carries no errorMessage field.
var defaultMessages = map[int]string{
	http.StatusBadRequest:            "bad request",
	http.StatusUnauthorized:          "unauthorized access",
	http.StatusForbidden:             "forbidden",
	http.StatusNotFound:              "resource not found",
	http.StatusRequestEntityTooLarge: "request payload too large",
	http.StatusUnsupportedMediaType:  "unsupported media type",
	http.StatusTooManyRequests:       "rate limited",
	http.StatusInternalServerError:   "internal server error",
	http.StatusServiceUnavailable:    "service temporarily unavailable",
	http.StatusGatewayTimeout:        "gateway timeout",
}

// RequestError is an HTTP request failure. StatusCode is 0 for
// transport-level failures that never produced a response.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

// NewRequestError builds a RequestError for status, preferring the server's
// message when present.
func NewRequestError(status int, message string) *RequestError {
	if message == "" {
		message = defaultMessages[status]
	}
	if message == "" {
		message = "request failed"
	}
	return &RequestError{StatusCode: status, Message: message}
}

// WrapRequestError builds a codeless RequestError around a transport
// failure.
func WrapRequestError(err error) *RequestError {
	return &RequestError{Message: "request failed", Err: err}
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status code: %d)", e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusOf extracts the HTTP status code from err if it wraps a
// RequestError.
func StatusOf(err error) (int, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode, true
	}
	return 0, false
}

// IsBadRequest reports whether err is a 400 request error.
func IsBadRequest(err error) bool { return hasStatus(err, http.StatusBadRequest) }

// IsUnauthorized reports whether err is a 401 request error.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsForbidden reports whether err is a 403 request error.
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound reports whether err is a 404 request error.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsRateLimited reports whether err is a 429 request error.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

func hasStatus(err error, status int) bool {
	code, ok := StatusOf(err)
	return ok && code == status
}

// BatchTimeoutError reports a batch wait that ran out of budget. It carries
// the batch IDs that were still queued and the per-item results that were
// already available across ALL batches in the wait set, so callers can
// salvage partial progress.
type BatchTimeoutError struct {
	QueuedBatchIDs []string
	PartialResults []BatchResult
}

func (e *BatchTimeoutError) Error() string {
	return fmt.Sprintf(
		"batch operation timed out; still queued: %s",
		strings.Join(e.QueuedBatchIDs, ", "),
	)
}

// OperationTimeoutError reports a single listing operation that exceeded its
// poll budget.
type OperationTimeoutError struct {
	OperationID string
}

func (e *OperationTimeoutError) Error() string {
	return fmt.Sprintf("listing operation %s timed out", e.OperationID)
}
