package layout

// DefaultTabWidth is the distance between tab stops.
const DefaultTabWidth = 8

// TabExpander computes tab stops for a fixed tab width.
type TabExpander struct {
	tabWidth int
}

// NewTabExpander creates a tab expander with the given tab width.
// A width below 1 selects DefaultTabWidth.
func NewTabExpander(tabWidth int) *TabExpander {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}
	return &TabExpander{tabWidth: tabWidth}
}

// TabWidth returns the tab width.
func (t *TabExpander) TabWidth() int {
	return t.tabWidth
}

// TabStopOffset returns how many columns a tab at the given column expands to.
func (t *TabExpander) TabStopOffset(col int) int {
	if col < 0 {
		col = 0
	}
	return t.tabWidth - (col % t.tabWidth)
}
