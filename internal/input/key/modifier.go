package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << (iota - 1)

	// ModAlt indicates the Alt key (Option on macOS), or a key sent
	// with an ESC prefix.
	ModAlt

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModMeta indicates the Meta key.
	ModMeta
)

// xtermModifier decodes the modifier parameter of a CSI sequence such as
// ESC [ 1 ; 5 C. The parameter is one more than a Shift/Alt/Ctrl/Meta
// bit mask, which matches the Modifier bit layout.
func xtermModifier(param int) Modifier {
	if param < 2 {
		return ModNone
	}
	return Modifier(param-1) & (ModShift | ModAlt | ModCtrl | ModMeta)
}

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// String returns a compact representation like "C-A".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.HasCtrl() {
		parts = append(parts, "C")
	}
	if m.HasAlt() {
		parts = append(parts, "A")
	}
	if m.HasShift() {
		parts = append(parts, "S")
	}
	if m.HasMeta() {
		parts = append(parts, "M")
	}
	return strings.Join(parts, "-")
}
