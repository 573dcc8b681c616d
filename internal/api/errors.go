package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxErrorDetail = 512

// APIError is returned for any non-2xx response from the backend. Message is
// the JSON "message" field only; Detail keeps whatever else the body said for
// logs.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	text := e.Message
	if text == "" {
		text = e.Detail
	}
	if text == "" {
		return fmt.Sprintf("request failed (status %d)", e.Status)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Status, text)
}

// UserMessage returns the server-supplied message, or "" when the body had none
func (e *APIError) UserMessage() string {
	return e.Message
}

// StatusCode returns the HTTP status of the response
func (e *APIError) StatusCode() int {
	return e.Status
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = truncate(strings.TrimSpace(payload.Message), maxErrorDetail)
		apiErr.Detail = truncate(strings.TrimSpace(payload.Error), maxErrorDetail)
	} else {
		apiErr.Detail = truncate(strings.TrimSpace(string(body)), maxErrorDetail)
	}
	return apiErr
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether the backend rejected the session
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
