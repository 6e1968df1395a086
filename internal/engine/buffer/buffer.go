package buffer

import (
	"bytes"
	"sync"

	"github.com/dshills/lineview/internal/engine/cursor"
	"github.com/dshills/lineview/internal/renderer/grapheme"
)

// Buffer is an editable text with a cursor.
// All methods are thread-safe.
type Buffer struct {
	mu       sync.RWMutex
	text     []byte
	cur      cursor.Position
	revision uint64
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithText sets the initial text. The cursor is placed at its end.
func WithText(s string) Option {
	return func(b *Buffer) {
		b.text = []byte(s)
		b.cur = cursor.End(b.text)
	}
}

// NewBuffer creates a new buffer, empty unless an option sets its text.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Insert inserts s at the cursor and moves the cursor past it.
func (b *Buffer) Insert(s string) {
	if s == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	off := b.cur.ByteOffset()
	text := make([]byte, 0, len(b.text)+len(s))
	text = append(text, b.text[:off]...)
	text = append(text, s...)
	text = append(text, b.text[off:]...)
	b.replace(text, off+len(s))
}

// DeleteBackward removes the grapheme cluster before the cursor.
// Returns false at the start of the buffer.
func (b *Buffer) DeleteBackward() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	end := b.cur.ByteOffset()
	if end == 0 {
		return false
	}
	start := b.cur.Prev(b.text).ByteOffset()
	b.replace(cut(b.text, start, end), start)
	return true
}

// DeleteForward removes the grapheme cluster after the cursor.
// Returns false at the end of the buffer.
func (b *Buffer) DeleteForward() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.cur.ByteOffset()
	if start >= len(b.text) {
		return false
	}
	end := start + grapheme.ClusterLen(b.text, start)
	b.replace(cut(b.text, start, end), start)
	return true
}

// MoveLeft moves the cursor one grapheme cluster left.
func (b *Buffer) MoveLeft() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cur = b.cur.Prev(b.text)
}

// MoveRight moves the cursor one grapheme cluster right.
func (b *Buffer) MoveRight() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cur = b.cur.Next(b.text)
}

// Home moves the cursor to the start of the current logical line.
func (b *Buffer) Home() {
	b.mu.Lock()
	defer b.mu.Unlock()

	off := bytes.LastIndexByte(b.text[:b.cur.ByteOffset()], '\n') + 1
	b.moveTo(off)
}

// End moves the cursor to the end of the current logical line.
func (b *Buffer) End() {
	b.mu.Lock()
	defer b.mu.Unlock()

	off := b.cur.ByteOffset()
	if i := bytes.IndexByte(b.text[off:], '\n'); i >= 0 {
		b.moveTo(off + i)
		return
	}
	b.cur = cursor.End(b.text)
}

// SetCursor moves the cursor to byte offset off, which must be a grapheme
// cluster boundary.
func (b *Buffer) SetCursor(off int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := cursor.FromByteOffset(b.text, off)
	if err != nil {
		return err
	}
	b.cur = p
	return nil
}

// Restore replaces the text and places the cursor at byte offset off,
// which must be a grapheme cluster boundary of text.
func (b *Buffer) Restore(text []byte, off int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := cursor.FromByteOffset(text, off)
	if err != nil {
		return err
	}
	b.text = bytes.Clone(text)
	b.cur = p
	b.revision++
	return nil
}

// Bytes returns a copy of the text.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return bytes.Clone(b.text)
}

// String returns the text.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return string(b.text)
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() cursor.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cur
}

// State returns a copy of the text and the cursor, read together.
func (b *Buffer) State() ([]byte, cursor.Position) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return bytes.Clone(b.text), b.cur
}

// Len returns the length of the text in bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.text)
}

// Revision returns a counter incremented by every text change.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.revision
}

// Reset clears the text and moves the cursor to the start.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.replace(nil, 0)
}

// replace installs new text and recomputes the cursor at off.
func (b *Buffer) replace(text []byte, off int) {
	b.text = text
	b.revision++
	b.moveTo(off)
}

func (b *Buffer) moveTo(off int) {
	b.cur = cursor.Snap(b.text, off)
}

func cut(text []byte, start, end int) []byte {
	out := make([]byte, 0, len(text)-(end-start))
	out = append(out, text[:start]...)
	return append(out, text[end:]...)
}
