package identity

import "errors"

var (
	// ErrNotFound is returned when a profile does not exist.
	ErrNotFound = errors.New("not found")
)
