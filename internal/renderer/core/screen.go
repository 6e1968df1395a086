package core

import "strings"

// DefaultMaxRows bounds the number of rows a single screen may hold.
const DefaultMaxRows = 1000

// LinePrefix is externally supplied text drawn at the start of a display row
// that begins a logical line (a continuation prompt).
type LinePrefix struct {
	Text  string
	Width int
	// Dirty forces the row to be repainted from column 0 on the next diff.
	Dirty bool
}

// Line is one terminal row of cells.
type Line struct {
	Cells  []Cell
	Prefix *LinePrefix
}

// Len returns the number of columns occupied by the line.
func (l Line) Len() int {
	return len(l.Cells)
}

// String returns the visible text of the line without styling.
func (l Line) String() string {
	var b strings.Builder
	for _, c := range l.Cells {
		b.WriteString(c.Text)
	}
	return b.String()
}

// Screen is a fully rendered virtual screen.
// A Screen is built fresh on every render and never mutated afterwards,
// except for prefix dirty flags set by the owning session.
type Screen struct {
	Lines []Line

	// Width is the terminal width the screen was rendered for.
	Width int

	// Cursor is the absolute cursor position.
	Cursor ScreenPos

	// CommandStart is where command content begins, after the primary prompt.
	CommandStart ScreenPos
}

// NewScreen creates an empty screen with a single row.
func NewScreen(width int) *Screen {
	return &Screen{
		Lines: []Line{{}},
		Width: width,
	}
}

// Rows returns the number of rows in the screen.
func (s *Screen) Rows() int {
	if s == nil {
		return 0
	}
	return len(s.Lines)
}

// Line returns the line at row, or an empty line when row is out of range.
func (s *Screen) Line(row int) Line {
	if s == nil || row < 0 || row >= len(s.Lines) {
		return Line{}
	}
	return s.Lines[row]
}

// Cell returns the cell at pos and whether it exists.
func (s *Screen) Cell(pos ScreenPos) (Cell, bool) {
	line := s.Line(pos.Row)
	if pos.Col < 0 || pos.Col >= len(line.Cells) {
		return Cell{}, false
	}
	return line.Cells[pos.Col], true
}

// Text returns the visible text of every row joined by newlines.
// Intended for tests and debugging.
func (s *Screen) Text() string {
	if s == nil {
		return ""
	}
	rows := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		rows[i] = l.String()
	}
	return strings.Join(rows, "\n")
}

// Clone returns a deep copy of the screen.
func (s *Screen) Clone() *Screen {
	if s == nil {
		return nil
	}
	out := &Screen{
		Lines:        make([]Line, len(s.Lines)),
		Width:        s.Width,
		Cursor:       s.Cursor,
		CommandStart: s.CommandStart,
	}
	for i, l := range s.Lines {
		cells := make([]Cell, len(l.Cells))
		copy(cells, l.Cells)
		out.Lines[i] = Line{Cells: cells}
		if l.Prefix != nil {
			p := *l.Prefix
			out.Lines[i].Prefix = &p
		}
	}
	return out
}

// Equals returns true if both screens have identical rows and cursor.
func (s *Screen) Equals(other *Screen) bool {
	if s.Rows() != other.Rows() {
		return false
	}
	if s.Rows() == 0 {
		return true
	}
	if !s.Cursor.Equals(other.Cursor) {
		return false
	}
	for i := range s.Lines {
		a, b := s.Lines[i].Cells, other.Lines[i].Cells
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !a[j].Equals(b[j]) {
				return false
			}
		}
	}
	return true
}
