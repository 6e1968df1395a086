package backend

import (
	"bytes"
	"fmt"

	"github.com/dshills/lineview/internal/renderer/core"
)

const sgrReset = "\x1b[0m"

// OpKind identifies a drawing operation.
type OpKind uint8

const (
	// OpWriteText writes Text starting at (Row, Col). The cursor advances
	// Cols columns.
	OpWriteText OpKind = iota
	// OpClearToEOL clears from (Row, Col) to the end of that row.
	OpClearToEOL
	// OpClearToEOS clears from (Row, Col) to the end of the screen.
	OpClearToEOS
	// OpMoveCursor places the cursor at (Row, Col).
	OpMoveCursor
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpWriteText:
		return "WriteText"
	case OpClearToEOL:
		return "ClearToEOL"
	case OpClearToEOS:
		return "ClearToEOS"
	case OpMoveCursor:
		return "MoveCursor"
	default:
		return "Unknown"
	}
}

// Op is a single drawing operation. Rows and columns are relative to the
// first row of the rendered screen.
type Op struct {
	Kind OpKind
	Row  int
	Col  int

	// Text holds the bytes to write, including SGR transitions.
	// Only set for OpWriteText.
	Text []byte

	// Cols is the number of columns Text occupies.
	Cols int
}

func (o Op) String() string {
	if o.Kind == OpWriteText {
		return fmt.Sprintf("%s(%d,%d,%q)", o.Kind, o.Row, o.Col, o.Text)
	}
	return fmt.Sprintf("%s(%d,%d)", o.Kind, o.Row, o.Col)
}

// Diff returns the operations that turn a terminal showing old into one
// showing new. A nil screen on either side is treated as blank, with the
// cursor at the origin.
//
// Rows are compared cell by cell. A changed row produces one OpWriteText
// spanning its first through last differing cell, an OpClearToEOL when it got
// shorter, and nothing at all when it is unchanged. A row whose prefix is
// marked dirty is rewritten from column 0. Rows that disappeared are cleared
// with a single OpClearToEOS. The final operation always places the cursor.
func Diff(old, new *core.Screen) []Op {
	var ops []Op

	for r := 0; r < new.Rows(); r++ {
		ops = diffRow(ops, r, old.Line(r), new.Lines[r])
	}

	if old.Rows() > new.Rows() {
		ops = append(ops, Op{Kind: OpClearToEOS, Row: new.Rows(), Col: 0})
	}

	var cursor core.ScreenPos
	if new != nil {
		cursor = new.Cursor
	}
	return append(ops, Op{Kind: OpMoveCursor, Row: cursor.Row, Col: cursor.Col})
}

func diffRow(ops []Op, row int, old, new core.Line) []Op {
	oc, nc := old.Cells, new.Cells
	repaint := new.Prefix != nil && new.Prefix.Dirty

	first := 0
	if !repaint {
		for first < len(oc) && first < len(nc) && oc[first].Equals(nc[first]) {
			first++
		}
	}

	last := len(nc) - 1
	if !repaint && len(nc) <= len(oc) {
		for last >= first && oc[last].Equals(nc[last]) {
			last--
		}
	}

	if first <= last {
		// Never start or end a write on half of a wide character.
		if first > 0 && nc[first].IsContinuation() {
			first--
		}
		if last+1 < len(nc) && nc[last+1].IsContinuation() {
			last++
		}
		text, cols := encodeCells(nc[first : last+1])
		if len(text) > 0 {
			ops = append(ops, Op{Kind: OpWriteText, Row: row, Col: first, Text: text, Cols: cols})
		}
	}

	if len(nc) < len(oc) {
		ops = append(ops, Op{Kind: OpClearToEOL, Row: row, Col: len(nc)})
	}
	return ops
}

// encodeCells renders cells as bytes, switching SGR state between cells and
// leaving the terminal in the default style afterwards.
func encodeCells(cells []core.Cell) ([]byte, int) {
	var b bytes.Buffer
	style := ""
	for _, c := range cells {
		if c.Style != style {
			if style != "" {
				b.WriteString(sgrReset)
			}
			b.WriteString(c.Style)
			style = c.Style
		}
		b.WriteString(c.Text)
	}
	if style != "" {
		b.WriteString(sgrReset)
	}
	return b.Bytes(), len(cells)
}
