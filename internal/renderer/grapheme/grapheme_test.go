package grapheme

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

const family = "\U0001F468\u200d\U0001F469\u200d\U0001F467\u200d\U0001F466"

func TestDecodeCodepoint(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		off   int
		want  rune
		n     int
		valid bool
	}{
		{"ascii", "abc", 1, 'b', 1, true},
		{"two byte", "caf\u00e9", 3, '\u00e9', 2, true},
		{"three byte", "中文", 3, '文', 3, true},
		{"four byte", "\U0001F600", 0, '\U0001F600', 4, true},
		{"invalid lead", "\xffa", 0, utf8.RuneError, 1, false},
		{"truncated", "\xe4\xb8", 0, utf8.RuneError, 1, false},
		{"lone continuation", "\x80", 0, utf8.RuneError, 1, false},
		{"surrogate encoding", "\xed\xa0\x80", 0, utf8.RuneError, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := DecodeCodepoint([]byte(tt.in), tt.off)
			if cp.Value != tt.want || cp.Len != tt.n || cp.Valid != tt.valid {
				t.Errorf("DecodeCodepoint(%q, %d) = %+v, want {%U %d %v}",
					tt.in, tt.off, cp, tt.want, tt.n, tt.valid)
			}
		})
	}
}

func TestDecodeCodepointOutOfRange(t *testing.T) {
	if cp := DecodeCodepoint([]byte("a"), 1); cp.Len != 0 {
		t.Errorf("expected zero codepoint at end, got %+v", cp)
	}
	if cp := DecodeCodepoint([]byte("a"), -1); cp.Len != 0 {
		t.Errorf("expected zero codepoint for negative offset, got %+v", cp)
	}
}

func TestClusterLen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"ascii", "ab", 1},
		{"combining acute", "e\u0301x", 3},
		{"multiple combining", "a\u0300\u0301\u0302", 7},
		{"cjk", "中文", 3},
		{"family zwj sequence", family + "x", 25},
		{"flag pair", "\U0001F1FA\U0001F1F8", 8},
		{"skin tone modifier", "\U0001F44D\U0001F3FD!", 8},
		{"heart with vs16", "\u2764\ufe0f", 6},
		{"invalid byte", "\xff\u0301", 1},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClusterLen([]byte(tt.in), 0); got != tt.want {
				t.Errorf("ClusterLen(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegionalIndicatorPairing(t *testing.T) {
	// Three indicators: the first two pair into a flag, the third stands alone.
	in := []byte("\U0001F1FA\U0001F1F8\U0001F1EB")
	got := Boundaries(in, 0, len(in))
	want := []int{0, 8, 12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Boundaries = %v, want %v", got, want)
	}
}

func TestBoundaries(t *testing.T) {
	in := []byte("a" + family + "\u00e9\u4e2d")
	got := Boundaries(in, 0, len(in))
	want := []int{0, 1, 26, 28, 31}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Boundaries = %v, want %v", got, want)
	}

	sub := Boundaries(in, 1, 28)
	if !reflect.DeepEqual(sub, []int{1, 26, 28}) {
		t.Errorf("sub-range Boundaries = %v", sub)
	}

	if empty := Boundaries(in, 5, 5); !reflect.DeepEqual(empty, []int{5}) {
		t.Errorf("empty range Boundaries = %v", empty)
	}
}

func TestCountAndCodepointCount(t *testing.T) {
	in := []byte(family)
	if got := Count(in); got != 1 {
		t.Errorf("Count(family) = %d, want 1", got)
	}
	if got := CodepointCount(in); got != 7 {
		t.Errorf("CodepointCount(family) = %d, want 7", got)
	}
	if got := CodepointCount([]byte("a\xffb")); got != 3 {
		t.Errorf("CodepointCount with invalid byte = %d, want 3", got)
	}
}

func TestIsBoundaryAndPrevBoundary(t *testing.T) {
	in := []byte("x" + family)
	for off := 2; off < 26; off++ {
		if IsBoundary(in, off) {
			t.Errorf("offset %d inside the family cluster reported as boundary", off)
		}
	}
	if !IsBoundary(in, 1) || !IsBoundary(in, 26) {
		t.Error("cluster edges should be boundaries")
	}
	if got := PrevBoundary(in, 26); got != 1 {
		t.Errorf("PrevBoundary(26) = %d, want 1", got)
	}
	if got := PrevBoundary(in, 1); got != 0 {
		t.Errorf("PrevBoundary(1) = %d, want 0", got)
	}
}

func TestIteratorSeek(t *testing.T) {
	in := []byte("ab中")
	it := NewIterator(in)
	it.Seek(1)
	var got []string
	for it.Next() {
		got = append(got, string(it.Cluster()))
	}
	if !reflect.DeepEqual(got, []string{"b", "中"}) {
		t.Errorf("iteration after Seek = %v", got)
	}
	if it.Index() != 1 {
		t.Errorf("Index after two clusters = %d, want 1", it.Index())
	}
}

func TestSegmentationAlwaysProgresses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "bytes")

		prev := -1
		total := 0
		it := NewIterator(b)
		for it.Next() {
			if it.Offset() <= prev {
				rt.Fatalf("offset did not advance: %d after %d", it.Offset(), prev)
			}
			if it.End() <= it.Offset() {
				rt.Fatalf("empty cluster at %d", it.Offset())
			}
			prev = it.Offset()
			total += len(it.Cluster())
		}
		if total != len(b) {
			rt.Fatalf("clusters cover %d bytes, want %d", total, len(b))
		}
	})
}
