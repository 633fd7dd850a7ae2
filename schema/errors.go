package schema

import "errors"

var (
	// ErrNoCredential indicates no bearer token is held.
	ErrNoCredential = errors.New("no credential")
	// ErrInvalidBaseURL indicates the API base URL is malformed.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrInvalidRequest indicates a malformed request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotAuthenticated indicates the operation requires a session user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrFeedClosed indicates the job stream has been closed.
	ErrFeedClosed = errors.New("job stream closed")
)
