package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the valid buffer range.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrNotBoundary indicates an offset falls inside a grapheme cluster.
	ErrNotBoundary = errors.New("offset is not a grapheme cluster boundary")
)
