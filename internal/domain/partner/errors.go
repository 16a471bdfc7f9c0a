package partner

import "errors"

var (
	// ErrNotFound is returned when an application does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyDecided is returned when deciding an application that has
	// left the pending state.
	ErrAlreadyDecided = errors.New("application already decided")

	// ErrUnauthorized is returned when the caller lacks the admin role.
	ErrUnauthorized = errors.New("not authorized")
)
