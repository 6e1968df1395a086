// Package backend turns virtual screens into terminal output.
//
// Diff compares two screens and produces a minimal list of drawing
// operations. An Applier translates those operations into ANSI escape
// sequences and writes them to a sink in a single write. Terminal is the
// production sink: the controlling tty in raw mode, with geometry and resize
// notifications.
package backend

import (
	"bytes"
	"io"
	"sync"
)

// Sink receives encoded terminal output.
type Sink = io.Writer

// Geometry reports the terminal dimensions.
type Geometry interface {
	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// OnResize registers a callback for terminal resize events.
	OnResize(callback func(width, height int))
}

// NullSink is an in-memory sink for testing and dry runs.
// It records every byte written and the number of write calls.
type NullSink struct {
	mu            sync.Mutex
	buf           bytes.Buffer
	writes        int
	width, height int
	resizeHandler func(width, height int)
}

// NewNullSink creates a null sink reporting the given dimensions.
func NewNullSink(width, height int) *NullSink {
	return &NullSink{width: width, height: height}
}

func (s *NullSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	return s.buf.Write(p)
}

func (s *NullSink) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.width, s.height
}

func (s *NullSink) OnResize(callback func(width, height int)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resizeHandler = callback
}

// Bytes returns a copy of everything written so far.
func (s *NullSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return bytes.Clone(s.buf.Bytes())
}

// Writes returns the number of Write calls made.
func (s *NullSink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes
}

// Reset discards recorded output.
func (s *NullSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Reset()
	s.writes = 0
}

// Resize simulates a terminal resize for testing.
func (s *NullSink) Resize(width, height int) {
	s.mu.Lock()
	s.width = width
	s.height = height
	handler := s.resizeHandler
	s.mu.Unlock()

	if handler != nil {
		handler(width, height)
	}
}
