package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed sync.
type ErrorKind string

const (
	MissingConfiguration ErrorKind = "MissingConfiguration"
	AuthFailure          ErrorKind = "AuthFailure"
	NotFound             ErrorKind = "NotFound"
	Conflict             ErrorKind = "Conflict"
	RateLimited          ErrorKind = "RateLimited"
	Unknown              ErrorKind = "Unknown"
)

// SyncError is returned by the sync engine. Status is zero for failures that
// happened before any HTTP response was received.
type SyncError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ErrorKind lets callers read the kind through a small interface.
func (e *SyncError) ErrorKind() string {
	return string(e.Kind)
}

// kindForStatus maps a write response status to an ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return AuthFailure
	case http.StatusNotFound:
		return NotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return Conflict
	case http.StatusTooManyRequests:
		return RateLimited
	default:
		return Unknown
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// newStatusError builds a SyncError from a non-2xx response body, preferring
// the API's own message.
func newStatusError(status int, body []byte) *SyncError {
	msg := fmt.Sprintf("GitHub API returned status %d", status)
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Message) != "" {
		msg = eb.Message
	}
	return &SyncError{Kind: kindForStatus(status), Status: status, Message: msg}
}
