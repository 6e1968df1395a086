// Package vscreen lays out prompt and command text into a virtual screen:
// a grid of cells mirroring what the terminal should display, together with
// the absolute cursor position. It also provides the reverse mapping from a
// screen position back to a byte offset.
//
// Both directions walk the text exactly once, in order, through the same
// placement rules, so they always agree on where every unit lands.
package vscreen

import (
	"github.com/dshills/lineview/internal/renderer/core"
	"github.com/dshills/lineview/internal/renderer/layout"
)

// Input is everything needed to render one frame.
type Input struct {
	// Prompt is the primary prompt, drawn before the command text.
	// It may contain SGR styling and newlines.
	Prompt string

	// Text is the command buffer. It may embed ANSI styling.
	Text []byte

	// Cursor is a byte offset into Text on a grapheme cluster boundary.
	Cursor int

	// Width is the terminal width in columns.
	Width int

	// Prefixes maps a 1-based logical line index to its continuation prompt.
	Prefixes map[int]string

	// MaxRows bounds the rendered grid. Zero means core.DefaultMaxRows.
	MaxRows int

	// TabWidth is the tab stop interval. Zero means layout.DefaultTabWidth.
	TabWidth int
}

// Render lays out in and returns the resulting screen.
//
// The cursor is recorded at the placement position of the unit that starts
// at the cursor offset, after any wrap that unit causes. A cursor on a
// newline sits at the end of the line the newline closes. A cursor whose
// column reached the terminal width, whether at the end of the buffer or on
// a newline, escape sequence or zero-width cluster, moves to the start of
// the next row, which is added to the grid if needed.
func Render(in Input) (*core.Screen, error) {
	if in.Width <= 0 {
		return nil, core.NewRenderError("render", core.ErrInvalidInput,
			"terminal width must be positive, got %d", in.Width)
	}
	if in.Cursor < 0 || in.Cursor > len(in.Text) {
		return nil, core.NewRenderError("render", core.ErrCursorOutOfRange,
			"cursor %d outside [0, %d]", in.Cursor, len(in.Text))
	}

	w := newWalker(in)
	w.walkPrompt(in.Prompt)
	if w.err != nil {
		return nil, w.err
	}

	recorded := false
	if in.Cursor == 0 {
		w.screen.Cursor = w.visible(w.screen.CommandStart)
		recorded = true
	}

	text := in.Text
	for off := 0; off < len(text); {
		u := layout.NextUnit(text, off)
		start := w.place(text, u, core.OwnerCommand)
		if w.err != nil {
			return nil, w.err
		}
		if !recorded && in.Cursor >= u.Offset && in.Cursor < u.End() {
			w.screen.Cursor = w.visible(start)
			recorded = true
		}
		off = u.End()
	}
	w.flushPending(core.OwnerCommand)

	if !recorded {
		w.screen.Cursor = w.visible(w.pos)
	}
	if w.screen.Cursor.Row >= w.screen.Rows() {
		w.newRow()
		if w.err != nil {
			return nil, w.err
		}
	}
	return w.screen, nil
}
