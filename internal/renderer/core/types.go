// Package core provides the shared data model for the renderer subsystem.
// This package breaks import cycles between the virtual screen renderer
// and the backend that diffs and applies screens.
package core

import "fmt"

// ScreenPos represents a position on screen (0-indexed).
type ScreenPos struct {
	Row int
	Col int
}

// NewScreenPos creates a screen position.
func NewScreenPos(row, col int) ScreenPos {
	return ScreenPos{Row: row, Col: col}
}

// Add returns a new position offset by the given delta.
func (p ScreenPos) Add(dRow, dCol int) ScreenPos {
	return ScreenPos{Row: p.Row + dRow, Col: p.Col + dCol}
}

// Equals returns true if two positions are the same.
func (p ScreenPos) Equals(other ScreenPos) bool {
	return p.Row == other.Row && p.Col == other.Col
}

// Before returns true if p comes before other in reading order.
func (p ScreenPos) Before(other ScreenPos) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// AtOrAfter returns true if p is the same as, or comes after, other in
// reading order.
func (p ScreenPos) AtOrAfter(other ScreenPos) bool {
	return !p.Before(other)
}

// String returns a string representation of the position.
func (p ScreenPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Owner identifies who produced the content of a cell.
type Owner uint8

const (
	// OwnerCommand marks content from the command text being edited.
	OwnerCommand Owner = iota
	// OwnerPrompt marks content from the primary prompt.
	OwnerPrompt
	// OwnerPrefix marks content from a continuation line prefix.
	OwnerPrefix
)

// String returns the owner name.
func (o Owner) String() string {
	switch o {
	case OwnerCommand:
		return "command"
	case OwnerPrompt:
		return "prompt"
	case OwnerPrefix:
		return "prefix"
	default:
		return "unknown"
	}
}
