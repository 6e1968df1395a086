package key

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	esc = 0x1b

	// maxSequence bounds an unterminated escape sequence before it is
	// discarded as garbage.
	maxSequence = 64
)

// Decoder turns raw terminal input into events. It is not safe for
// concurrent use.
type Decoder struct {
	pending []byte
}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed decodes b, together with any incomplete input left over from the
// previous call, and returns the complete events in order. Unrecognized
// sequences and invalid bytes are dropped.
//
// An ESC that ends the input is reported as KeyEscape, since terminals
// write a whole escape sequence at once.
func (d *Decoder) Feed(b []byte) []Event {
	buf := append(d.pending, b...)
	d.pending = nil

	var events []Event
	for i := 0; i < len(buf); {
		ev, n, ok := decode(buf[i:])
		if n == 0 {
			d.pending = append([]byte(nil), buf[i:]...)
			break
		}
		if ok {
			events = append(events, ev)
		}
		i += n
	}
	return events
}

// Pending reports whether an incomplete sequence is buffered.
func (d *Decoder) Pending() bool {
	return len(d.pending) > 0
}

// Reset discards buffered input.
func (d *Decoder) Reset() {
	d.pending = nil
}

// decode reads one event from the start of b. It returns the number of
// bytes consumed, 0 when b holds only the start of an event, and ok false
// when the consumed bytes produce no event.
func decode(b []byte) (Event, int, bool) {
	c := b[0]
	switch {
	case c == esc:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return NewSpecialEvent(KeyEnter, ModNone), 1, true
	case c == '\t':
		return NewSpecialEvent(KeyTab, ModNone), 1, true
	case c == 0x7f || c == 0x08:
		return NewSpecialEvent(KeyBackspace, ModNone), 1, true
	case c == 0:
		return NewRuneEvent(' ', ModCtrl), 1, true
	case c <= 0x1a:
		return NewRuneEvent(rune('a'+c-1), ModCtrl), 1, true
	case c == 0x1f:
		return NewRuneEvent('_', ModCtrl), 1, true
	case c < 0x20:
		return Event{}, 1, false
	}

	if !utf8.FullRune(b) {
		return Event{}, 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size == 1 {
		return Event{}, 1, false
	}
	return NewRuneEvent(r, ModNone), size, true
}

func decodeEscape(b []byte) (Event, int, bool) {
	if len(b) == 1 {
		return NewSpecialEvent(KeyEscape, ModNone), 1, true
	}

	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return Event{}, 0, false
		}
		k, ok := finalKey(b[2])
		return NewSpecialEvent(k, ModNone), 3, ok
	case esc:
		return NewSpecialEvent(KeyEscape, ModNone), 1, true
	}

	ev, n, ok := decode(b[1:])
	if n == 0 {
		return Event{}, 0, false
	}
	ev.Modifiers |= ModAlt
	return ev, n + 1, ok
}

func finalKey(c byte) (Key, bool) {
	switch c {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	case 'H':
		return KeyHome, true
	case 'F':
		return KeyEnd, true
	}
	return KeyNone, false
}

// decodeCSI decodes ESC [ params final.
func decodeCSI(b []byte) (Event, int, bool) {
	i := 2
	for ; i < len(b); i++ {
		c := b[i]
		if c >= 0x40 && c <= 0x7e {
			break
		}
		if c < 0x20 || c > 0x3f {
			// Malformed: drop what was read and resync on this byte.
			return Event{}, i, false
		}
	}
	if i == len(b) {
		if len(b) > maxSequence {
			return Event{}, len(b), false
		}
		return Event{}, 0, false
	}

	final, params, n := b[i], string(b[2:i]), i+1

	if strings.HasPrefix(params, "<") && (final == 'M' || final == 'm') {
		ev, ok := decodeMouse(params[1:], final == 'M')
		return ev, n, ok
	}

	nums := parseParams(params)
	param := func(idx int) int {
		if idx < len(nums) {
			return nums[idx]
		}
		return 0
	}

	if k, ok := finalKey(final); ok {
		return NewSpecialEvent(k, xtermModifier(param(1))), n, true
	}

	switch final {
	case '~':
		mods := xtermModifier(param(1))
		switch param(0) {
		case 1, 7:
			return NewSpecialEvent(KeyHome, mods), n, true
		case 4, 8:
			return NewSpecialEvent(KeyEnd, mods), n, true
		case 3:
			return NewSpecialEvent(KeyDelete, mods), n, true
		}
	case 'Z':
		return NewSpecialEvent(KeyTab, ModShift), n, true
	case 'R':
		if len(nums) == 2 && nums[0] > 0 && nums[1] > 0 {
			return Event{Key: KeyCursorReport, Mouse: Mouse{Row: nums[0] - 1, Col: nums[1] - 1}}, n, true
		}
	}
	return Event{}, n, false
}

func parseParams(s string) []int {
	if s == "" {
		return nil
	}
	fields := strings.Split(s, ";")
	nums := make([]int, len(fields))
	for i, f := range fields {
		nums[i], _ = strconv.Atoi(f)
	}
	return nums
}

// decodeMouse decodes the "b;x;y" part of an SGR mouse report.
func decodeMouse(params string, press bool) (Event, bool) {
	fields := strings.Split(params, ";")
	if len(fields) != 3 {
		return Event{}, false
	}
	var v [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Event{}, false
		}
		v[i] = n
	}
	cb, x, y := v[0], v[1], v[2]
	if x < 1 || y < 1 {
		return Event{}, false
	}

	var mods Modifier
	if cb&4 != 0 {
		mods |= ModShift
	}
	if cb&8 != 0 {
		mods |= ModAlt
	}
	if cb&16 != 0 {
		mods |= ModCtrl
	}

	return Event{
		Key:       KeyMouse,
		Modifiers: mods,
		Mouse: Mouse{
			Button: cb &^ (4 | 8 | 16 | 32),
			Row:    y - 1,
			Col:    x - 1,
			Press:  press,
		},
	}, true
}
