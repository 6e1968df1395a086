// Package renderer draws a shell prompt and its multi-line command buffer
// onto a terminal, repainting only what changed between frames.
//
// The work is split into stages, each in its own package:
//
//	grapheme  user-perceived character boundaries
//	layout    display widths, tab stops and escape sequences
//	vscreen   text to virtual screen, and screen position back to text
//	backend   screen diff, ANSI encoding and the terminal sink
//
// Session ties the stages together. It keeps the last screen that was
// successfully written and turns each new Frame into the smallest update.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	_ = term.Init()
//	width, _ := term.Size()
//	s := renderer.NewSession(term, renderer.Options{Width: width})
//	err := s.Refresh(renderer.Frame{Prompt: "$ ", Text: text, Cursor: pos})
package renderer
