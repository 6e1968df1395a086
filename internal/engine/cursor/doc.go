// Package cursor provides the cursor position used by the edit buffer and
// the renderer.
//
// A Position is an immutable value holding three indices into a text:
// the byte offset, the codepoint index and the grapheme cluster index.
// They are computed together by a single conversion, so they never disagree,
// and the byte offset always sits on a grapheme cluster boundary.
//
// Positions are tied to the text they were computed for. After an edit,
// call Rebase with the new text.
package cursor
