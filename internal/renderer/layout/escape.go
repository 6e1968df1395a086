package layout

const (
	esc = 0x1B
	bel = 0x07
)

// EscapeLen reports whether b[off:] starts a CSI escape sequence (ESC '[')
// and returns its length. The sequence ends at the first ASCII letter; an
// unterminated sequence runs to the end of b.
func EscapeLen(b []byte, off int) (int, bool) {
	if off < 0 || off+1 >= len(b) || b[off] != esc || b[off+1] != '[' {
		return 0, false
	}
	for i := off + 2; i < len(b); i++ {
		if isASCIILetter(b[i]) {
			return i - off + 1, true
		}
	}
	return len(b) - off, true
}

// oscLen reports whether b[off:] starts an operating system command
// (ESC ']') and returns its length including the BEL or ST terminator.
func oscLen(b []byte, off int) (int, bool) {
	if off < 0 || off+1 >= len(b) || b[off] != esc || b[off+1] != ']' {
		return 0, false
	}
	for i := off + 2; i < len(b); i++ {
		switch {
		case b[i] == bel:
			return i - off + 1, true
		case b[i] == esc && i+1 < len(b) && b[i+1] == '\\':
			return i - off + 2, true
		}
	}
	return len(b) - off, true
}

// IsSGR reports whether seq is a complete Select Graphic Rendition sequence
// (ESC '[' params 'm').
func IsSGR(seq []byte) bool {
	if len(seq) < 3 || seq[0] != esc || seq[1] != '[' || seq[len(seq)-1] != 'm' {
		return false
	}
	for _, c := range seq[2 : len(seq)-1] {
		if (c < '0' || c > '9') && c != ';' && c != ':' {
			return false
		}
	}
	return true
}

// IsSGRReset reports whether seq resets all graphic attributes
// (ESC[m, ESC[0m, ESC[00m, ...).
func IsSGRReset(seq []byte) bool {
	if !IsSGR(seq) {
		return false
	}
	for _, c := range seq[2 : len(seq)-1] {
		if c != '0' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
