package backend

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"syscall"

	"github.com/dshills/lineview/internal/renderer/core"
)

// DefaultMaxRetries is the number of extra write attempts made after a short
// write before giving up.
const DefaultMaxRetries = 3

// Applier writes drawing operations to a sink as ANSI escape sequences.
//
// It tracks where the terminal cursor is after each successful apply and
// only emits a cursor positioning sequence when the next operation starts
// somewhere else. An Applier is not safe for concurrent use.
type Applier struct {
	// Origin is the terminal row (0-indexed) where screen row 0 is drawn.
	Origin int

	// MaxRetries bounds the retries after a short write.
	// Zero means DefaultMaxRetries; negative disables retries.
	MaxRetries int

	cursor core.ScreenPos
	known  bool
}

// NewApplier creates an applier drawing at the given origin row.
func NewApplier(origin, maxRetries int) *Applier {
	return &Applier{Origin: origin, MaxRetries: maxRetries}
}

// Reset forgets the tracked cursor position, so the next apply positions
// the cursor explicitly before its first operation.
func (a *Applier) Reset() {
	a.known = false
}

// Cursor returns the tracked cursor position and whether it is known.
func (a *Applier) Cursor() (core.ScreenPos, bool) {
	return a.cursor, a.known
}

// Encode returns the bytes Apply would write for ops, given the currently
// tracked cursor. It does not change the applier state.
func (a *Applier) Encode(ops []Op) []byte {
	buf, _, _ := a.encode(ops)
	return buf
}

// Apply encodes ops and writes them to sink in one write. Short writes are
// retried with the remainder. On failure the tracked cursor is forgotten and
// a *core.IOError is returned; the terminal keeps whatever the completed
// writes produced.
func (a *Applier) Apply(ops []Op, sink io.Writer) error {
	buf, end, known := a.encode(ops)
	if len(buf) == 0 {
		return nil
	}
	if err := a.write(sink, buf); err != nil {
		a.known = false
		return err
	}
	a.cursor, a.known = end, known
	return nil
}

func (a *Applier) encode(ops []Op) ([]byte, core.ScreenPos, bool) {
	var b bytes.Buffer
	cur, known := a.cursor, a.known

	moveTo := func(row, col int, force bool) {
		pos := core.NewScreenPos(row, col)
		if force || !known || !cur.Equals(pos) {
			a.writeCUP(&b, row, col)
		}
		cur, known = pos, true
	}

	for _, op := range ops {
		switch op.Kind {
		case OpWriteText:
			moveTo(op.Row, op.Col, false)
			b.Write(op.Text)
			cur = cur.Add(0, op.Cols)
		case OpClearToEOL:
			moveTo(op.Row, op.Col, false)
			b.WriteString("\x1b[K")
		case OpClearToEOS:
			moveTo(op.Row, op.Col, false)
			b.WriteString("\x1b[J")
		case OpMoveCursor:
			moveTo(op.Row, op.Col, true)
		}
	}
	return b.Bytes(), cur, known
}

// writeCUP appends a cursor position sequence (1-indexed).
func (a *Applier) writeCUP(b *bytes.Buffer, row, col int) {
	b.WriteString("\x1b[")
	b.WriteString(strconv.Itoa(a.Origin + row + 1))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(col + 1))
	b.WriteByte('H')
}

func (a *Applier) write(sink io.Writer, buf []byte) error {
	retries := a.MaxRetries
	if retries == 0 {
		retries = DefaultMaxRetries
	}
	retries = max(retries, 0)

	written, attempts := 0, 0
	var lastErr error
	for written < len(buf) {
		if attempts > retries {
			if lastErr == nil {
				lastErr = io.ErrShortWrite
			}
			return &core.IOError{Fatal: true, Attempts: attempts, Written: written, Err: lastErr}
		}

		n, err := sink.Write(buf[written:])
		attempts++
		written += max(n, 0)

		switch {
		case err == nil:
			lastErr = nil
		case retryable(err):
			lastErr = err
		default:
			return &core.IOError{Fatal: true, Attempts: attempts, Written: written, Err: err}
		}
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, io.ErrShortWrite) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EAGAIN)
}
