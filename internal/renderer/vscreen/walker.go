package vscreen

import (
	"github.com/dshills/lineview/internal/renderer/core"
	"github.com/dshills/lineview/internal/renderer/layout"
)

const replacementChar = "\uFFFD"

// walker lays out units one at a time, tracking the screen position.
// Render and Locate share it so both see exactly the same geometry.
type walker struct {
	width   int
	maxRows int
	tabs    *layout.TabExpander

	screen *core.Screen
	pos    core.ScreenPos

	// style is the active SGR state applied to new cells.
	style string
	// pending holds zero-width clusters waiting for a cell on this row.
	pending string
	// logical is the index of the current logical line of command text.
	logical  int
	prefixes map[int]string

	err error
}

func newWalker(in Input) *walker {
	maxRows := in.MaxRows
	if maxRows <= 0 {
		maxRows = core.DefaultMaxRows
	}
	return &walker{
		width:    in.Width,
		maxRows:  maxRows,
		tabs:     layout.NewTabExpander(in.TabWidth),
		screen:   core.NewScreen(in.Width),
		prefixes: in.Prefixes,
	}
}

// walkPrompt lays out the primary prompt and resets the style so prompt
// colors never leak into command text.
func (w *walker) walkPrompt(prompt string) {
	b := []byte(prompt)
	for off := 0; off < len(b) && w.err == nil; {
		u := layout.NextUnit(b, off)
		if u.Kind == layout.UnitNewline {
			w.flushPending(core.OwnerPrompt)
			w.newRow()
		} else {
			w.place(b, u, core.OwnerPrompt)
		}
		off = u.End()
	}
	w.flushPending(core.OwnerPrompt)
	w.style = ""
	w.screen.CommandStart = w.pos
}

// place lays out one unit and returns the position where it starts, after
// any wrap it caused. Escape and control units occupy no columns.
func (w *walker) place(b []byte, u layout.Unit, owner core.Owner) core.ScreenPos {
	switch u.Kind {
	case layout.UnitEscape:
		if u.SGR {
			seq := b[u.Offset:u.End()]
			if layout.IsSGRReset(seq) {
				w.style = ""
			} else {
				w.style += string(seq)
			}
		}
		return w.pos

	case layout.UnitControl:
		return w.pos

	case layout.UnitNewline:
		start := w.pos
		w.flushPending(owner)
		w.newRow()
		if owner == core.OwnerCommand {
			w.logical++
			w.placePrefix()
		}
		return start

	case layout.UnitTab:
		tw := w.tabs.TabStopOffset(w.pos.Col)
		if w.pos.Col > 0 && w.pos.Col+tw > w.width {
			w.wrap(owner)
			tw = w.tabs.TabStopOffset(w.pos.Col)
		}
		start := w.pos
		n := min(tw, w.width-w.pos.Col)
		for i := 0; i < n; i++ {
			w.append(core.SpaceCell(w.style, owner))
		}
		return start

	case layout.UnitCluster:
		text := string(b[u.Offset:u.End()])
		if u.Invalid {
			text = replacementChar
		}
		if u.Width == 0 {
			w.attach(text, owner)
			return w.pos
		}
		cw := u.Width
		if w.pos.Col > 0 && w.pos.Col+cw > w.width {
			w.wrap(owner)
		}
		// A wide cluster on a one-column terminal cannot fit anywhere.
		cw = min(cw, w.width)
		start := w.pos
		w.append(core.NewCell(w.pending+text, cw, w.style, owner))
		w.pending = ""
		for i := 1; i < cw; i++ {
			w.append(core.ContinuationCell(w.style, owner))
		}
		return start
	}
	return w.pos
}

// placePrefix draws the continuation prefix registered for the current
// logical line. Prefixes never wrap: anything wider than the terminal is
// clipped.
func (w *walker) placePrefix() {
	text, ok := w.prefixes[w.logical]
	if !ok || text == "" {
		return
	}
	saved := w.style
	w.style = ""
	b := []byte(text)
	for off := 0; off < len(b); {
		u := layout.NextUnit(b, off)
		off = u.End()
		switch u.Kind {
		case layout.UnitNewline:
			continue
		case layout.UnitTab:
			if w.pos.Col+w.tabs.TabStopOffset(w.pos.Col) > w.width {
				continue
			}
		case layout.UnitCluster:
			if u.Width > 0 && w.pos.Col+u.Width > w.width {
				continue
			}
		}
		w.place(b, u, core.OwnerPrefix)
	}
	w.flushPending(core.OwnerPrefix)
	w.style = saved

	line := &w.screen.Lines[w.pos.Row]
	line.Prefix = &core.LinePrefix{Text: text, Width: w.pos.Col}
}

// attach joins a zero-width cluster to the previous cell of the same owner
// on this row, or holds it for the next cell.
func (w *walker) attach(text string, owner core.Owner) {
	cells := w.screen.Lines[w.pos.Row].Cells
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].IsContinuation() {
			continue
		}
		if cells[i].Owner == owner {
			cells[i].Text += text
			return
		}
		break
	}
	w.pending += text
}

// flushPending attaches held zero-width clusters to the last cell of the row
// before the row ends. They only join a cell of the same owner; with no such
// cell to carry them they are dropped.
func (w *walker) flushPending(owner core.Owner) {
	if w.pending == "" {
		return
	}
	cells := w.screen.Lines[w.pos.Row].Cells
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].IsContinuation() {
			continue
		}
		if cells[i].Owner == owner {
			cells[i].Text += w.pending
		}
		break
	}
	w.pending = ""
}

// visible returns where the terminal shows the cursor for a unit starting at
// pos. A position in the pending-wrap column belongs to the next row, which
// is where the next character typed there appears.
func (w *walker) visible(pos core.ScreenPos) core.ScreenPos {
	if pos.Col >= w.width {
		return core.NewScreenPos(pos.Row+1, 0)
	}
	return pos
}

func (w *walker) append(c core.Cell) {
	line := &w.screen.Lines[w.pos.Row]
	line.Cells = append(line.Cells, c)
	w.pos.Col = len(line.Cells)
}

// wrap moves to a new display row within the same logical line.
func (w *walker) wrap(owner core.Owner) {
	w.flushPending(owner)
	w.newRow()
}

func (w *walker) newRow() {
	if len(w.screen.Lines) >= w.maxRows {
		if w.err == nil {
			w.err = core.NewRenderError("render", core.ErrBufferTooSmall,
				"content needs more than %d rows", w.maxRows)
		}
		return
	}
	w.screen.Lines = append(w.screen.Lines, core.Line{})
	w.pos = core.NewScreenPos(w.pos.Row+1, 0)
}
