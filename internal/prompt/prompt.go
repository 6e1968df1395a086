// Package prompt supplies the primary prompt and the continuation prompts
// drawn before each additional line of a multi-line command.
package prompt

import "bytes"

// Provider produces prompts for the current buffer.
type Provider interface {
	// Primary returns the prompt drawn before the first line.
	Primary() string

	// Prefixes returns continuation prompts keyed by 1-based logical line
	// index for every line after the first in text.
	Prefixes(text []byte) map[int]string
}

// Static is a Provider with fixed prompts.
type Static struct {
	PrimaryPrompt      string
	ContinuationPrompt string
}

// NewStatic creates a static provider.
func NewStatic(primary, continuation string) Static {
	return Static{PrimaryPrompt: primary, ContinuationPrompt: continuation}
}

// Primary returns the primary prompt.
func (s Static) Primary() string {
	return s.PrimaryPrompt
}

// Prefixes returns the continuation prompt for every line after the first.
func (s Static) Prefixes(text []byte) map[int]string {
	return prefixes(text, func(int) string { return s.ContinuationPrompt })
}

// LineCount returns the number of logical lines in text. An empty buffer
// has one line.
func LineCount(text []byte) int {
	return bytes.Count(text, []byte{'\n'}) + 1
}

func prefixes(text []byte, fn func(line int) string) map[int]string {
	n := LineCount(text)
	if n == 1 {
		return nil
	}
	m := make(map[int]string, n-1)
	for i := 1; i < n; i++ {
		m[i] = fn(i)
	}
	return m
}
