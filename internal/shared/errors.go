package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidActor occurs when the operator identifier is missing or malformed.
	ErrInvalidActor = errors.New("invalid actor id")
)
