// Package engine holds the editing model that feeds the renderer.
//
// The engine is split into sub-packages:
//
//   - cursor: an atomic cursor Position carrying byte, codepoint and
//     grapheme indices that are always consistent with each other
//   - buffer: the editable command buffer and its cursor
//
// A cursor byte offset is only valid on a grapheme cluster boundary.
// Every constructor and movement in this package preserves that, so the
// renderer never has to re-validate it.
package engine
