package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing or invalid bearer token.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the actor lacks the required permission.
	ErrForbidden = errors.New("permission denied")
)
