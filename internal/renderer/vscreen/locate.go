package vscreen

import (
	"github.com/dshills/lineview/internal/renderer/core"
	"github.com/dshills/lineview/internal/renderer/layout"
)

// Locate maps a screen position back to a byte offset in in.Text, using the
// same layout Render would produce. in.Cursor is ignored.
//
// The result is the offset of the first unit placed at or after target in
// reading order. A click past the end of a line lands on that line's newline,
// a click inside a continuation prompt lands on the first byte of the line,
// and a click before the command lands on 0. Targets past the last unit
// return len(in.Text).
//
// Positions are compared the way Render reports the cursor, so a unit in
// the pending-wrap column counts as the start of the next row. The result
// is always a cluster boundary. For a target taken from Render's cursor,
// Render places the cursor for the result at that same target. Offsets that
// display at the same position map back to the first of them.
func Locate(in Input, target core.ScreenPos) int {
	if in.Width <= 0 {
		return 0
	}

	in.MaxRows = max(in.MaxRows, core.DefaultMaxRows)
	w := newWalker(in)
	w.walkPrompt(in.Prompt)

	text := in.Text
	for off := 0; off < len(text) && w.err == nil; {
		u := layout.NextUnit(text, off)
		placed := w.place(text, u, core.OwnerCommand)
		if w.visible(placed).AtOrAfter(target) {
			return u.Offset
		}
		if u.Kind == layout.UnitNewline && placed.Row == target.Row {
			return u.Offset
		}
		off = u.End()
	}
	return len(text)
}
