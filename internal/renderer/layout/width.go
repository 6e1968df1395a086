// Package layout measures how text occupies terminal columns: codepoint and
// cluster widths, tab stops, escape sequences, and the classification of a
// byte stream into renderable units.
package layout

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/lineview/internal/renderer/grapheme"
)

const (
	zeroWidthJoiner    = 0x200D
	variationSelector  = 0xFE0F
	regionalIndicatorA = 0x1F1E6
	regionalIndicatorZ = 0x1F1FF
)

// widthCondition pins East-Asian ambiguous characters to narrow so widths
// do not change with the user's locale.
var widthCondition = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}()

// RuneWidth returns the display width of a codepoint.
// Returns 0 for control characters and combining marks, 2 for wide (CJK)
// characters and emoji, and 1 otherwise.
func RuneWidth(r rune) int {
	switch {
	case r < 0x20, r >= 0x7F && r < 0xA0:
		return 0
	case r == zeroWidthJoiner, r == variationSelector:
		return 0
	case r == utf8.RuneError:
		return 1
	}
	return widthCondition.RuneWidth(r)
}

// ClusterWidth returns the display width of a grapheme cluster: the sum of
// its codepoint widths, clamped to 2. An emoji presentation selector or a
// regional indicator forces width 2.
func ClusterWidth(cluster []byte) int {
	w := 0
	for off := 0; off < len(cluster); {
		cp := grapheme.DecodeCodepoint(cluster, off)
		switch {
		case cp.Value == variationSelector:
			return 2
		case cp.Value >= regionalIndicatorA && cp.Value <= regionalIndicatorZ:
			return 2
		}
		w += RuneWidth(cp.Value)
		off += cp.Len
	}
	return min(w, 2)
}

// TextWidth returns the width of the widest row of s laid out from column 0
// with unlimited width. Escape sequences and control characters occupy no
// columns, tabs expand to the next stop and a newline starts a new row.
func (t *TabExpander) TextWidth(s string) int {
	b := []byte(s)
	col, widest := 0, 0
	for off := 0; off < len(b); {
		u := NextUnit(b, off)
		switch u.Kind {
		case UnitCluster:
			col += u.Width
		case UnitTab:
			col += t.TabStopOffset(col)
		case UnitNewline:
			col = 0
		case UnitEscape, UnitControl:
		}
		widest = max(widest, col)
		off += u.Len
	}
	return widest
}
