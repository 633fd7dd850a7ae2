package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	fallbackDefault  = "An error occurred"
	fallbackLogin    = "Login failed"
	fallbackUpload   = "Upload failed"
	fallbackDownload = "Download failed"
	messageNoServer  = "Server not available"
)

// RequestError is the single error type surfaced by the gateway. Status is
// zero when no HTTP response was received.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the backend rejected the credential.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func transportError(err error) *RequestError {
	return &RequestError{Message: err.Error(), Err: err}
}

func responseError(resp *http.Response, fallback string) *RequestError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}
	return &RequestError{
		Status:  resp.StatusCode,
		Message: errorMessage(body, fallback),
	}
}

// errorMessage flattens a backend error body into one readable string.
// {"detail": "x"} yields x; a list of validation issues yields
// "<loc after the first segment>: <msg>" per issue, comma separated.
// Anything else yields fallback.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	detail := bytes.TrimSpace(payload.Detail)
	if len(detail) == 0 {
		return fallback
	}
	switch detail[0] {
	case '"':
		var msg string
		if err := json.Unmarshal(detail, &msg); err != nil || msg == "" {
			return fallback
		}
		return msg
	case '[':
		var issues []validationIssue
		if err := json.Unmarshal(detail, &issues); err != nil {
			return fallback
		}
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			parts = append(parts, fmt.Sprintf("%s: %s", issueField(issue.Loc), issue.Msg))
		}
		if msg := strings.Join(parts, ", "); msg != "" {
			return msg
		}
		return fallback
	default:
		return fallback
	}
}

func issueField(loc []any) string {
	if loc == nil {
		return "field"
	}
	if len(loc) <= 1 {
		return ""
	}
	segments := make([]string, 0, len(loc)-1)
	for _, seg := range loc[1:] {
		segments = append(segments, fmt.Sprint(seg))
	}
	return strings.Join(segments, ".")
}
