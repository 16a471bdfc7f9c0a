package booking

import "errors"

var (
	// ErrValidation marks user-correctable input problems. Anything not
	// wrapped in it is treated as a backend failure and kept out of
	// responses.
	ErrValidation = errors.New("validation failed")

	// ErrSlotTaken is returned when the user already holds a booking at the
	// same appointment date and time. Detected from the unique index on
	// insert, never by a prior read.
	ErrSlotTaken = errors.New("you already have a booking at this date and time")

	// ErrInvalidTransition is returned when a status change is not allowed
	// by the booking state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when the caller may not act on the booking.
	ErrUnauthorized = errors.New("not allowed")

	// ErrNotFound is returned when the booking does not exist.
	ErrNotFound = errors.New("booking not found")
)
