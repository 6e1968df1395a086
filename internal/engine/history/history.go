package history

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/dshills/lineview/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Kind classifies an edit for coalescing.
type Kind string

// Edit kinds. KindOther never coalesces.
const (
	KindOther   Kind = ""
	KindInsert  Kind = "insert"
	KindDelete  Kind = "delete"
	KindNewline Kind = "newline"
)

// DefaultMaxEntries bounds the undo stack when NewHistory is given zero.
const DefaultMaxEntries = 1000

// coalesceWindow is the longest pause between edits that still coalesce.
const coalesceWindow = time.Second

// Snapshot is the buffer state before an edit.
type Snapshot struct {
	Text   []byte
	Cursor int
}

func snapshotOf(buf *buffer.Buffer) Snapshot {
	text, cur := buf.State()
	return Snapshot{Text: text, Cursor: cur.ByteOffset()}
}

func (s Snapshot) equals(other Snapshot) bool {
	return s.Cursor == other.Cursor && bytes.Equal(s.Text, other.Text)
}

type undoEntry struct {
	snap      Snapshot
	kind      Kind
	timestamp time.Time
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// open is true while edits may join the top undo entry.
	open bool

	maxEntries int
	now        func() time.Time
}

// NewHistory creates a new history manager keeping at most maxEntries
// undo steps (0 = DefaultMaxEntries).
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Record saves the state of buf before an edit of the given kind and
// clears the redo stack. An edit of the same kind as the previous one,
// made within a second and with no Break in between, joins its entry.
func (h *History) Record(buf *buffer.Buffer, kind Kind) {
	snap := snapshotOf(buf)

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.redoStack = nil

	if n := len(h.undoStack); n > 0 {
		top := h.undoStack[n-1]
		if h.open && kind != KindOther && top.kind == kind && now.Sub(top.timestamp) <= coalesceWindow {
			top.timestamp = now
			return
		}
		if top.snap.equals(snap) {
			top.kind, top.timestamp = kind, now
			h.open = true
			return
		}
	}

	h.undoStack = append(h.undoStack, &undoEntry{snap: snap, kind: kind, timestamp: now})
	h.open = true

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Break ends the current run of coalescing edits.
func (h *History) Break() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open = false
}

// Undo restores buf to the state before the last recorded edit. Entries
// equal to the current state are skipped.
func (h *History) Undo(buf *buffer.Buffer) error {
	return h.step(buf, &h.undoStack, &h.redoStack, ErrNothingToUndo)
}

// Redo reapplies the last undone edit.
func (h *History) Redo(buf *buffer.Buffer) error {
	return h.step(buf, &h.redoStack, &h.undoStack, ErrNothingToRedo)
}

// step pops from src, pushes the current state onto dst and restores the
// popped snapshot.
func (h *History) step(buf *buffer.Buffer, src, dst *[]*undoEntry, empty error) error {
	current := snapshotOf(buf)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.open = false
	for len(*src) > 0 {
		entry := (*src)[len(*src)-1]
		*src = (*src)[:len(*src)-1]
		if entry.snap.equals(current) {
			continue
		}
		if err := buf.Restore(entry.snap.Text, entry.snap.Cursor); err != nil {
			*src = append(*src, entry)
			return err
		}
		*dst = append(*dst, &undoEntry{snap: current, kind: KindOther, timestamp: h.now()})
		return nil
	}
	return empty
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.open = false
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
