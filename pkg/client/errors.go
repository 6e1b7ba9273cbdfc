package client

import (
	"errors"
	"fmt"
)

// ErrorPayload is the structured body the API sends with failures, e.g.
// {"error":"BAD_CREDENTIALS","message":"..."}.
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Status     string // status line, e.g. "401 Unauthorized"
	Message    string
	// Cause is set when the response body carried an "error" field.
	Cause *ErrorPayload
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %s", e.Status)
	}
	return fmt.Sprintf("HTTP %s: %s", e.Status, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// ErrorCode returns the structured error code attached to err, if any.
func ErrorCode(err error) (string, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Cause != nil && httpErr.Cause.Error != "" {
		return httpErr.Cause.Error, true
	}
	return "", false
}

// StatusCode returns the HTTP status carried by err, or 0 when the request
// never produced a response.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
