package catalog

import "errors"

var (
	// ErrNotFound is returned when a lab or test does not exist.
	ErrNotFound = errors.New("not found")
)
