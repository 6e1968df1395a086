package core

import (
	"errors"
	"fmt"
)

// Errors returned by renderer operations.
var (
	// ErrInvalidInput indicates a missing or malformed argument,
	// such as a non-positive terminal width.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCursorOutOfRange indicates a cursor offset beyond the buffer length.
	// It is returned rather than clamped so desyncs stay visible.
	ErrCursorOutOfRange = errors.New("cursor out of range")

	// ErrBufferTooSmall indicates the rendered content exceeds a fixed capacity.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrIO indicates a terminal write failure.
	ErrIO = errors.New("terminal i/o failed")
)

// RenderError describes a rejected render or locate call.
type RenderError struct {
	Op  string // Operation name ("render", "locate")
	Err error  // One of the sentinel errors above
	Msg string // Detail
}

// NewRenderError creates a RenderError.
func NewRenderError(op string, err error, format string, args ...any) *RenderError {
	return &RenderError{
		Op:  op,
		Err: err,
		Msg: fmt.Sprintf(format, args...),
	}
}

func (e *RenderError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Msg)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IOError describes a failed terminal write.
type IOError struct {
	// Fatal is false when the failure was a short write that may be retried.
	Fatal bool
	// Attempts is the number of write calls made.
	Attempts int
	// Written is the number of bytes that reached the terminal.
	Written int
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	kind := "retryable"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("%s terminal write after %d attempt(s), %d byte(s) written: %v",
		kind, e.Attempts, e.Written, e.Err)
}

// Unwrap returns both the sentinel and the underlying error.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// IsFatal reports whether err is a fatal terminal write failure.
func IsFatal(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr) && ioErr.Fatal
}
