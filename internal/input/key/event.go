package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Mouse describes a mouse report.
type Mouse struct {
	// Button is the SGR button code with modifier bits removed
	// (0 left, 1 middle, 2 right, 64/65 wheel).
	Button int

	// Row and Col are 0-indexed terminal coordinates.
	Row, Col int

	// Press is false for a release report.
	Press bool
}

// Event represents a single decoded input event.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Mouse is set for KeyMouse events.
	Mouse Mouse
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{Key: key, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character without Ctrl or Alt,
// which an editor should insert.
func (e Event) IsChar() bool {
	return e.IsRune() && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0 &&
		(unicode.IsPrint(e.Rune) || unicode.Is(unicode.Mn, e.Rune) || unicode.Is(unicode.Cf, e.Rune))
}

// IsCtrl reports whether e is Ctrl plus the given lowercase letter.
func (e Event) IsCtrl(r rune) bool {
	return e.Key == KeyRune && e.Rune == r && e.Modifiers == ModCtrl
}

// String returns a canonical string representation such as "a", "C-l",
// "A-Enter" or "Mouse(0,3,7)".
func (e Event) String() string {
	var name string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = string(e.Rune)
		}
	case KeyMouse:
		name = fmt.Sprintf("Mouse(%d,%d,%d)", e.Mouse.Button, e.Mouse.Row, e.Mouse.Col)
	default:
		name = e.Key.String()
	}

	if e.Modifiers == ModNone {
		return name
	}
	return strings.Join([]string{e.Modifiers.String(), name}, "-")
}
