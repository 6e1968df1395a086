package layout

import (
	"github.com/dshills/lineview/internal/renderer/grapheme"
)

// UnitKind classifies a lexical unit of text.
type UnitKind uint8

const (
	// UnitCluster is a grapheme cluster occupying Width columns.
	UnitCluster UnitKind = iota
	// UnitEscape is an escape sequence. It occupies no columns.
	UnitEscape
	// UnitTab is a horizontal tab, expanded to the next tab stop.
	UnitTab
	// UnitNewline ends a logical line.
	UnitNewline
	// UnitControl is any other control character. It occupies no columns.
	UnitControl
)

// String returns the unit kind name.
func (k UnitKind) String() string {
	switch k {
	case UnitCluster:
		return "cluster"
	case UnitEscape:
		return "escape"
	case UnitTab:
		return "tab"
	case UnitNewline:
		return "newline"
	case UnitControl:
		return "control"
	default:
		return "unknown"
	}
}

// Unit is one lexical unit of text starting at Offset.
type Unit struct {
	Kind   UnitKind
	Offset int
	Len    int

	// Width is the column width of a UnitCluster; zero for other kinds.
	Width int

	// SGR is set for escape units that select graphic rendition.
	SGR bool

	// Invalid is set for a cluster made of a single malformed byte.
	Invalid bool
}

// End returns the offset just past the unit.
func (u Unit) End() int {
	return u.Offset + u.Len
}

// NextUnit classifies the unit starting at off. off must lie inside b and on
// a grapheme cluster boundary. Every unit has Len >= 1.
func NextUnit(b []byte, off int) Unit {
	u := Unit{Offset: off}
	switch b[off] {
	case '\t':
		u.Kind, u.Len = UnitTab, 1
		return u
	case '\n':
		u.Kind, u.Len = UnitNewline, 1
		return u
	case esc:
		if n, ok := EscapeLen(b, off); ok {
			u.Kind, u.Len = UnitEscape, n
			u.SGR = IsSGR(b[off : off+n])
			return u
		}
		if n, ok := oscLen(b, off); ok {
			u.Kind, u.Len = UnitEscape, n
			return u
		}
	}

	cp := grapheme.DecodeCodepoint(b, off)
	if cp.Valid && isControl(cp.Value) {
		u.Kind, u.Len = UnitControl, cp.Len
		return u
	}

	u.Kind = UnitCluster
	u.Len = grapheme.ClusterLen(b, off)
	if !cp.Valid {
		u.Invalid = true
		u.Width = 1
		return u
	}
	u.Width = ClusterWidth(b[off : off+u.Len])
	return u
}

func isControl(r rune) bool {
	return r < 0x20 || (r >= 0x7F && r < 0xA0)
}
