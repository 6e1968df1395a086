package core

// Cell represents one terminal column of rendered content.
type Cell struct {
	// Text holds the UTF-8 bytes of the grapheme cluster occupying this column,
	// including any zero-width clusters attached to it.
	// Empty for continuation cells (second column of a wide cluster).
	Text string

	// Width is the visual width of the cluster: 1 or 2 for lead cells,
	// 0 for continuation cells.
	Width int

	// Style is the active SGR escape state the cell is drawn with.
	// Empty means the terminal default style.
	Style string

	// Owner marks the cell as prompt, prefix, or command content.
	// It does not take part in equality: it never changes terminal output.
	Owner Owner
}

// NewCell creates a cell for the given cluster.
func NewCell(text string, width int, style string, owner Owner) Cell {
	return Cell{
		Text:  text,
		Width: width,
		Style: style,
		Owner: owner,
	}
}

// ContinuationCell returns a continuation cell for wide characters.
func ContinuationCell(style string, owner Owner) Cell {
	return Cell{
		Width: 0,
		Style: style,
		Owner: owner,
	}
}

// SpaceCell returns a single blank column, used for tab expansion.
func SpaceCell(style string, owner Owner) Cell {
	return Cell{
		Text:  " ",
		Width: 1,
		Style: style,
		Owner: owner,
	}
}

// IsContinuation returns true if this is a continuation cell
// (second cell of a wide character).
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Text == ""
}

// Len returns the byte length of the cell text.
func (c Cell) Len() int {
	return len(c.Text)
}

// Equals returns true if two cells produce identical terminal output.
func (c Cell) Equals(other Cell) bool {
	return c.Text == other.Text &&
		c.Width == other.Width &&
		c.Style == other.Style
}
