// Package buffer provides the editable command buffer of the line editor.
//
// A Buffer holds the command text as UTF-8 bytes together with a cursor
// Position. Every mutation recomputes the cursor through the cursor
// package, so the cursor always sits on a grapheme cluster boundary and
// its byte, codepoint and grapheme indices agree.
//
// Basic usage:
//
//	buf := buffer.NewBuffer(buffer.WithText("echo hi"))
//	buf.Insert("!")          // "echo hi!"
//	buf.MoveLeft()
//	buf.DeleteBackward()     // "echo h!"
//	text, cur := buf.State() // snapshot for rendering
//
// All methods are thread-safe.
package buffer
