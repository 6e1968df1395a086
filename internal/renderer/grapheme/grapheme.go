// Package grapheme decodes UTF-8 and groups codepoints into grapheme clusters.
//
// Clusters follow the extended grapheme cluster rules of UAX #29, which keep
// together a base and its combining marks, regional indicator pairs (flags),
// emoji joined by ZWJ, and a base followed by an emoji modifier.
//
// Every function is total: malformed input decodes to the replacement
// codepoint one byte at a time, so segmentation always makes progress.
package grapheme

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Codepoint is a decoded Unicode scalar value.
type Codepoint struct {
	// Value is the decoded rune, or utf8.RuneError for malformed input.
	Value rune
	// Len is the number of bytes consumed (1-4), or 0 at end of input.
	Len int
	// Valid is false when the bytes were not a well-formed UTF-8 sequence.
	Valid bool
}

// DecodeCodepoint decodes exactly one codepoint starting at off.
// Malformed or truncated sequences return the replacement codepoint with
// length 1. Offsets outside b return a zero Codepoint.
func DecodeCodepoint(b []byte, off int) Codepoint {
	if off < 0 || off >= len(b) {
		return Codepoint{}
	}
	r, n := utf8.DecodeRune(b[off:])
	if r == utf8.RuneError && n <= 1 {
		return Codepoint{Value: utf8.RuneError, Len: 1, Valid: false}
	}
	return Codepoint{Value: r, Len: n, Valid: true}
}

// ClusterLen returns the byte length of the grapheme cluster starting at off.
// off must be a cluster boundary. Returns 0 at end of input.
func ClusterLen(b []byte, off int) int {
	n, _ := clusterLen(b, off, -1)
	return n
}

// clusterLen measures one cluster, threading the uniseg state so callers
// walking a whole buffer avoid re-deriving it.
func clusterLen(b []byte, off, state int) (int, int) {
	if off < 0 || off >= len(b) {
		return 0, -1
	}
	if cp := DecodeCodepoint(b, off); !cp.Valid {
		return 1, -1
	}
	cluster, _, _, newState := uniseg.FirstGraphemeCluster(b[off:], state)
	n := len(cluster)
	// uniseg may glue trailing malformed bytes onto a cluster; cut the
	// cluster at the first malformed byte so it stays its own unit.
	for i := off; i < off+n; {
		cp := DecodeCodepoint(b, i)
		if !cp.Valid {
			if i == off {
				return 1, -1
			}
			return i - off, -1
		}
		i += cp.Len
	}
	if n == 0 {
		return 1, -1
	}
	return n, newState
}

// Boundaries returns the cluster start offsets in b[start:end] followed by end.
// start must be a cluster boundary.
func Boundaries(b []byte, start, end int) []int {
	if start < 0 {
		start = 0
	}
	if end > len(b) {
		end = len(b)
	}
	if start >= end {
		return []int{end}
	}
	out := make([]int, 0, end-start+1)
	it := NewIterator(b[:end])
	it.Seek(start)
	for it.Next() {
		out = append(out, it.Offset())
	}
	return append(out, end)
}

// Count returns the number of grapheme clusters in b.
func Count(b []byte) int {
	n := 0
	it := NewIterator(b)
	for it.Next() {
		n++
	}
	return n
}

// CodepointCount returns the number of codepoints in b, counting each
// malformed byte as one codepoint.
func CodepointCount(b []byte) int {
	n := 0
	for off := 0; off < len(b); {
		off += DecodeCodepoint(b, off).Len
		n++
	}
	return n
}

// IsBoundary reports whether off starts a grapheme cluster (or is len(b)).
func IsBoundary(b []byte, off int) bool {
	if off == 0 || off == len(b) {
		return true
	}
	if off < 0 || off > len(b) {
		return false
	}
	it := NewIterator(b)
	for it.Next() {
		switch {
		case it.Offset() == off:
			return true
		case it.Offset() > off:
			return false
		}
	}
	return false
}

// PrevBoundary returns the start of the cluster that ends at or contains off.
// Returns 0 when off <= 0.
func PrevBoundary(b []byte, off int) int {
	if off <= 0 {
		return 0
	}
	prev := 0
	it := NewIterator(b)
	for it.Next() {
		if it.Offset() >= off {
			break
		}
		prev = it.Offset()
	}
	return prev
}
