package app

import (
	"fmt"
	"strings"

	"github.com/dshills/lineview/internal/engine/history"
	"github.com/dshills/lineview/internal/input/key"
)

// handleKey applies one input event to the buffer. It returns ErrQuit
// when the editor should exit.
func (app *Application) handleKey(ev key.Event) error {
	if ev.IsChar() {
		app.edit(history.KindInsert, func() { app.buf.Insert(string(ev.Rune)) })
		return nil
	}

	switch {
	case ev.IsCtrl('a'):
		app.move(app.buf.Home)
	case ev.IsCtrl('e'):
		app.move(app.buf.End)
	case ev.IsCtrl('b'):
		app.move(app.buf.MoveLeft)
	case ev.IsCtrl('f'):
		app.move(app.buf.MoveRight)
	case ev.IsCtrl('u'):
		app.edit(history.KindOther, app.buf.Reset)
	case ev.IsCtrl('_'), ev.IsCtrl('z'):
		if err := app.hist.Undo(app.buf); err != nil {
			app.log.Debug("undo: %v", err)
		}
	case ev.IsRune() && ev.Rune == '/' && ev.Modifiers == key.ModAlt:
		if err := app.hist.Redo(app.buf); err != nil {
			app.log.Debug("redo: %v", err)
		}
	case ev.IsCtrl('l'):
		return app.clearScreen()
	case ev.IsCtrl('c'):
		return app.cancelLine()
	case ev.IsCtrl('d'):
		if app.buf.Len() == 0 {
			return ErrQuit
		}
		app.edit(history.KindDelete, func() { app.buf.DeleteForward() })
	}

	switch ev.Key {
	case key.KeyEnter:
		return app.handleEnter(ev)
	case key.KeyTab:
		if !ev.Modifiers.HasShift() {
			app.edit(history.KindInsert, func() { app.buf.Insert("\t") })
		}
	case key.KeyBackspace:
		app.edit(history.KindDelete, func() { app.buf.DeleteBackward() })
	case key.KeyDelete:
		app.edit(history.KindDelete, func() { app.buf.DeleteForward() })
	case key.KeyLeft:
		app.move(app.buf.MoveLeft)
	case key.KeyRight:
		app.move(app.buf.MoveRight)
	case key.KeyHome:
		app.move(app.buf.Home)
	case key.KeyEnd:
		app.move(app.buf.End)
	case key.KeyUp:
		app.move(func() { app.moveVertical(-1) })
	case key.KeyDown:
		app.move(func() { app.moveVertical(1) })
	case key.KeyMouse:
		app.move(func() { app.handleMouse(ev.Mouse) })
	}
	return nil
}

// edit records an undo step of the given kind and applies fn.
func (app *Application) edit(kind history.Kind, fn func()) {
	app.hist.Record(app.buf, kind)
	fn()
}

// move applies a cursor movement, which ends any run of coalesced edits.
func (app *Application) move(fn func()) {
	app.hist.Break()
	fn()
}

// handleEnter submits the command, unless Alt is held or the line ends in
// a backslash, which continue it on a new line.
func (app *Application) handleEnter(ev key.Event) error {
	if ev.Modifiers.HasAlt() {
		app.edit(history.KindNewline, func() { app.buf.Insert("\n") })
		return nil
	}
	text, cur := app.buf.State()
	if cur.ByteOffset() == len(text) && strings.HasSuffix(string(text), "\\") {
		app.edit(history.KindNewline, func() { app.buf.Insert("\n") })
		return nil
	}
	return app.submit()
}

// moveVertical moves the cursor to the same column on the screen row dy
// rows away, staying put at the first or last row.
func (app *Application) moveVertical(dy int) {
	f := app.frame()
	screen, err := app.session.Layout(f)
	if err != nil {
		return
	}
	row := screen.Cursor.Row + dy
	if row < 0 || row >= screen.Rows() {
		return
	}
	pos, err := app.session.Locate(f, row, screen.Cursor.Col)
	if err != nil {
		return
	}
	_ = app.buf.SetCursor(pos.ByteOffset())
}

// handleMouse moves the cursor to a left click inside the command line.
func (app *Application) handleMouse(m key.Mouse) {
	if !m.Press || m.Button != 0 {
		return
	}
	row := m.Row - app.origin
	if row < 0 {
		return
	}
	pos, err := app.session.Locate(app.frame(), row, m.Col)
	if err != nil {
		app.log.Debug("locate (%d,%d): %v", row, m.Col, err)
		return
	}
	if err := app.buf.SetCursor(pos.ByteOffset()); err != nil {
		app.log.Debug("set cursor %d: %v", pos.ByteOffset(), err)
	}
}

// submit hands the command to the submit callback, prints its output
// below the command line and starts a new empty line under it.
func (app *Application) submit() error {
	line := app.buf.String()
	app.log.Debug("submit %q", line)

	var out string
	if app.onSubmit != nil {
		out = app.onSubmit(line)
	}
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	rows := app.outputRows(out)
	out = strings.ReplaceAll(out, "\n", "\r\n")

	return app.finishLine("", "\r\n"+out, 1+rows)
}

// outputRows returns how many terminal rows out occupies, counting lines
// that wrap at the session width. out ends with a newline or is empty.
func (app *Application) outputRows(out string) int {
	width := max(app.session.Width(), 1)
	rows := 0
	for _, line := range strings.SplitAfter(out, "\n") {
		if line == "" {
			continue
		}
		w := app.tabs.TextWidth(strings.TrimSuffix(line, "\n"))
		rows += max(1, (w+width-1)/width)
	}
	return rows
}

// cancelLine abandons the command, marking it with ^C.
func (app *Application) cancelLine() error {
	return app.finishLine("^C", "\r\n", 1)
}

// finishLine leaves the current command on screen, writes mark after its
// last cell and then tail, which moves the terminal cursor down by lines
// rows. The next prompt is drawn where tail leaves the cursor.
func (app *Application) finishLine(mark, tail string, lines int) error {
	screen, err := app.session.Layout(app.frame())
	if err != nil {
		return err
	}
	last := screen.Rows() - 1
	col := screen.Line(last).Len()

	seq := fmt.Sprintf("\x1b[%d;%dH", app.origin+last+1, col+1) + mark + tail
	if err := app.writeRaw(seq); err != nil {
		return err
	}

	app.buf.Reset()
	app.hist.Clear()
	app.origin = min(app.origin+last+lines, max(app.height-1, 0))
	app.session.SetOrigin(app.origin)
	app.session.Invalidate()
	return nil
}

// clearScreen clears the terminal and redraws the command at the top.
func (app *Application) clearScreen() error {
	if err := app.writeRaw(seqClearScreen); err != nil {
		return err
	}
	app.origin = 0
	app.session.SetOrigin(0)
	app.session.Invalidate()
	return nil
}
