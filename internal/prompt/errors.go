package prompt

import "errors"

// Errors returned by script providers.
var (
	// ErrClosed is returned when calling into a closed script.
	ErrClosed = errors.New("prompt script is closed")

	// ErrTimeout is returned when a prompt function runs too long.
	ErrTimeout = errors.New("prompt script timed out")

	// ErrBadResult is returned when a prompt function does not return a string.
	ErrBadResult = errors.New("prompt function must return a string")
)
