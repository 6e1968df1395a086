// Package history provides undo and redo for the command buffer.
//
// History keeps snapshots of the buffer taken before each edit. Edits of
// the same kind made in quick succession, such as typing a word, share one
// snapshot and undo together:
//
//	h := history.NewHistory(0)
//
//	h.Record(buf, history.KindInsert)
//	buf.Insert("x")
//
//	_ = h.Undo(buf) // buf is back to its state before the insert
//	_ = h.Redo(buf)
//
// Cursor movement ends the current run of edits; call Break for that.
package history
