package cursor

import (
	"fmt"

	"github.com/dshills/lineview/internal/engine"
	"github.com/dshills/lineview/internal/renderer/grapheme"
)

// Position is a cursor location in a text.
// Position is an immutable value type.
type Position struct {
	byteOff   int
	codepoint int
	grapheme  int
}

// Start returns the position before the first cluster.
func Start() Position {
	return Position{}
}

// End returns the position after the last cluster of text.
func End(text []byte) Position {
	p, _ := convert(text, len(text), -1)
	return p
}

// FromByteOffset returns the position at byte offset off. It fails with
// engine.ErrOffsetOutOfRange outside [0, len(text)] and with
// engine.ErrNotBoundary inside a grapheme cluster.
func FromByteOffset(text []byte, off int) (Position, error) {
	if off < 0 || off > len(text) {
		return Position{}, fmt.Errorf("byte offset %d of %d: %w", off, len(text), engine.ErrOffsetOutOfRange)
	}
	p, ok := convert(text, off, -1)
	if !ok {
		return Position{}, fmt.Errorf("byte offset %d: %w", off, engine.ErrNotBoundary)
	}
	return p, nil
}

// Snap returns the position at byte offset off, clamped to [0, len(text)]
// and moved back to the start of the cluster containing it.
func Snap(text []byte, off int) Position {
	return Position{byteOff: max(off, 0)}.Rebase(text)
}

// FromGraphemeIndex returns the position before the idx-th cluster of text.
// idx may equal the cluster count, which is the end of the text.
func FromGraphemeIndex(text []byte, idx int) (Position, error) {
	if idx < 0 {
		return Position{}, fmt.Errorf("grapheme index %d: %w", idx, engine.ErrOffsetOutOfRange)
	}
	p, ok := convert(text, len(text), idx)
	if !ok {
		return Position{}, fmt.Errorf("grapheme index %d of %d: %w", idx, p.grapheme, engine.ErrOffsetOutOfRange)
	}
	return p, nil
}

// convert walks text once, stopping at byte offset off or at grapheme index
// idx (when idx >= 0), whichever comes first. It reports false when the stop
// point is not reached exactly on a cluster boundary.
func convert(text []byte, off, idx int) (Position, bool) {
	var p Position
	it := grapheme.NewIterator(text)
	for p.byteOff < off && p.grapheme != idx && it.Next() {
		if it.End() > off {
			return p, false
		}
		p.byteOff = it.End()
		p.codepoint += grapheme.CodepointCount(it.Cluster())
		p.grapheme++
	}
	if idx >= 0 {
		return p, p.grapheme == idx
	}
	return p, p.byteOff == off
}

// ByteOffset returns the position's byte offset.
func (p Position) ByteOffset() int {
	return p.byteOff
}

// Codepoint returns the number of codepoints before the position.
func (p Position) Codepoint() int {
	return p.codepoint
}

// Grapheme returns the number of grapheme clusters before the position.
func (p Position) Grapheme() int {
	return p.grapheme
}

// Next returns the position one grapheme cluster later, or p at the end.
func (p Position) Next(text []byte) Position {
	if p.byteOff >= len(text) {
		return p
	}
	n := grapheme.ClusterLen(text, p.byteOff)
	return Position{
		byteOff:   p.byteOff + n,
		codepoint: p.codepoint + grapheme.CodepointCount(text[p.byteOff:p.byteOff+n]),
		grapheme:  p.grapheme + 1,
	}
}

// Prev returns the position one grapheme cluster earlier, or p at the start.
func (p Position) Prev(text []byte) Position {
	if p.byteOff <= 0 || p.grapheme == 0 {
		return Start()
	}
	q, _ := convert(text, p.byteOff, p.grapheme-1)
	return q
}

// Rebase recomputes the position for text, typically after an edit.
// An offset past the end moves to the end; an offset that now falls inside
// a cluster moves back to that cluster's start.
func (p Position) Rebase(text []byte) Position {
	off := min(p.byteOff, len(text))
	if q, ok := convert(text, off, -1); ok {
		return q
	}
	q, _ := convert(text, grapheme.PrevBoundary(text, off), -1)
	return q
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("Position(byte=%d, cp=%d, g=%d)", p.byteOff, p.codepoint, p.grapheme)
}

// Equals returns true if two positions are at the same place.
func (p Position) Equals(other Position) bool {
	return p == other
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.byteOff < other.byteOff:
		return -1
	case p.byteOff > other.byteOff:
		return 1
	default:
		return 0
	}
}

// Before returns true if p is before other.
func (p Position) Before(other Position) bool {
	return p.byteOff < other.byteOff
}

// After returns true if p is after other.
func (p Position) After(other Position) bool {
	return p.byteOff > other.byteOff
}
