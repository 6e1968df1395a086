package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/dshills/lineview/internal/config"
	"github.com/dshills/lineview/internal/config/watcher"
	"github.com/dshills/lineview/internal/input/key"
	"github.com/dshills/lineview/internal/renderer/core"
)

// Terminal control sequences written outside of screen diffs.
const (
	seqMouseOn     = "\x1b[?1000h\x1b[?1006h"
	seqMouseOff    = "\x1b[?1006l\x1b[?1000l"
	seqQueryCursor = "\x1b[6n"
	seqClearScreen = "\x1b[H\x1b[2J"
)

// cursorReportTimeout bounds the wait for the reply to seqQueryCursor.
const cursorReportTimeout = 250 * time.Millisecond

// readSize is the read buffer for terminal input.
const readSize = 4096

type size struct{ width, height int }

// Run edits lines until ctx is canceled, the input ends, or the user quits
// with Ctrl-D on an empty line. A clean exit returns nil.
func (app *Application) Run(ctx context.Context) (err error) {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.log.Error("panic: %v", r)
		}
	}()

	if app.cfg.Mouse {
		if err := app.writeRaw(seqMouseOn); err != nil {
			return err
		}
		defer func() { _ = app.writeRaw(seqMouseOff) }()
	}

	resizes := make(chan size, 8)
	app.term.OnResize(func(width, height int) {
		select {
		case resizes <- size{width, height}:
		default:
		}
	})
	defer app.term.OnResize(nil)

	reloads := make(chan struct{}, 1)
	if w := app.watchConfig(reloads); w != nil {
		defer func() { _ = w.Close() }()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := make(chan readResult, 16)
	go app.readLoop(ctx, input)

	queued, err := app.locatePrompt(ctx, input)
	for _, ev := range queued {
		if herr := app.handleKey(ev); herr != nil {
			return app.exit(herr)
		}
	}
	if err != nil {
		return app.exit(err)
	}
	if err := app.refresh(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case r := <-input:
			if r.err != nil {
				return app.exit(r.err)
			}
			for _, ev := range app.decoder.Feed(r.data) {
				if err := app.handleKey(ev); err != nil {
					return app.exit(err)
				}
			}
			if err := app.refresh(); err != nil {
				return err
			}

		case sz := <-resizes:
			app.handleResize(sz)
			if err := app.refresh(); err != nil {
				return err
			}

		case <-reloads:
			app.reloadConfig()
			if err := app.refresh(); err != nil {
				return err
			}
		}
	}
}

// exit maps the error that ended the loop to the result of Run.
func (app *Application) exit(err error) error {
	switch {
	case errors.Is(err, ErrQuit):
		app.log.Info("quit")
		return nil
	case errors.Is(err, io.EOF):
		app.log.Info("input closed")
		return nil
	}
	return err
}

// readResult carries one terminal read. A result with err set is the last.
type readResult struct {
	data []byte
	err  error
}

// readLoop copies terminal input to out until a read fails. The pending
// Read is abandoned when ctx ends; closing the terminal unblocks it.
func (app *Application) readLoop(ctx context.Context, out chan<- readResult) {
	buf := make([]byte, readSize)
	for {
		n, err := app.term.Read(buf)
		var r readResult
		if n > 0 {
			r.data = append([]byte(nil), buf[:n]...)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			err = NewComponentError("terminal", "read", err)
		}
		r.err = err
		if n > 0 && err != nil {
			// Deliver the data before the error.
			if !send(ctx, out, readResult{data: r.data}) {
				return
			}
			r.data = nil
		}
		if (n > 0 || err != nil) && !send(ctx, out, r) {
			return
		}
		if err != nil {
			return
		}
	}
}

func send(ctx context.Context, out chan<- readResult, r readResult) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// locatePrompt asks the terminal where its cursor is and starts drawing on
// that row. A terminal that does not answer in time gets a cleared screen
// and the prompt on row 0. Key events read while waiting are returned,
// along with a read error that ended the wait.
func (app *Application) locatePrompt(ctx context.Context, input <-chan readResult) ([]key.Event, error) {
	if err := app.writeRaw(seqQueryCursor); err != nil {
		return nil, err
	}

	timer := time.NewTimer(cursorReportTimeout)
	defer timer.Stop()

	var queued []key.Event
	for {
		select {
		case <-ctx.Done():
			return queued, nil

		case r := <-input:
			if r.err != nil {
				return queued, r.err
			}
			found := false
			for _, ev := range app.decoder.Feed(r.data) {
				if ev.Key != key.KeyCursorReport || found {
					queued = append(queued, ev)
					continue
				}
				found = true
				app.origin = min(ev.Mouse.Row, max(app.height-1, 0))
				app.session.SetOrigin(app.origin)
				app.log.Debug("prompt at terminal row %d", app.origin)
			}
			if found {
				return queued, nil
			}

		case <-timer.C:
			app.log.Debug("no cursor report; clearing screen")
			app.origin = 0
			app.session.SetOrigin(0)
			return queued, app.writeRaw(seqClearScreen)
		}
	}
}

// watchConfig starts watching the config file and signals reloads. It
// returns nil when there is nothing to watch.
func (app *Application) watchConfig(reloads chan<- struct{}) *watcher.Watcher {
	if app.cfgPath == "" {
		return nil
	}
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		app.log.Warn("config watcher: %v", err)
	}))
	if err != nil {
		app.log.Warn("config watcher: %v", err)
		return nil
	}
	if err := w.Watch(app.cfgPath); err != nil {
		app.log.Warn("watch %s: %v", app.cfgPath, err)
		_ = w.Close()
		return nil
	}
	w.OnChange(func(ev watcher.Event) {
		app.log.Debug("config %s: %s", ev.Op, ev.Path)
		select {
		case reloads <- struct{}{}:
		default:
		}
	})
	w.Start()
	return w
}

// reloadConfig re-reads the config file and applies its prompt settings.
// An invalid file keeps the current settings.
func (app *Application) reloadConfig() {
	cfg, err := config.Load(app.cfgPath)
	if err != nil {
		app.log.Warn("reload %s: %v", app.cfgPath, err)
		return
	}
	app.cfg.Prompt = cfg.Prompt
	app.cfg.ContinuationPrompt = cfg.ContinuationPrompt
	app.cfg.PromptScript = cfg.PromptScript
	app.loadPrompts(app.cfg)
	app.session.InvalidatePrefixes()
	app.log.Info("reloaded %s", app.cfgPath)
}

func (app *Application) handleResize(sz size) {
	app.height = sz.height
	if err := app.session.Resize(sz.width); err != nil {
		app.log.Warn("resize to %dx%d: %v", sz.width, sz.height, err)
		return
	}
	if app.origin >= app.height {
		app.origin = max(app.height-1, 0)
		app.session.SetOrigin(app.origin)
	}
}

// refresh redraws the command line. When the rendered screen would run
// past the bottom of the terminal, the terminal is scrolled first and the
// origin moved up to match.
func (app *Application) refresh() error {
	f := app.frame()
	screen, err := app.session.Layout(f)
	if err != nil {
		app.log.Error("layout: %v", err)
		return nil
	}
	if err := app.scrollFor(screen); err != nil {
		return err
	}

	if err := app.session.Refresh(f); errors.Is(err, core.ErrIO) {
		return NewComponentError("renderer", "refresh", err)
	}
	// Render errors are logged by the session and leave the old frame up.
	return nil
}

func (app *Application) scrollFor(screen *core.Screen) error {
	over := app.origin + screen.Rows() - app.height
	if over <= 0 || app.height <= 0 {
		return nil
	}
	k := min(over, app.origin)
	if k == 0 {
		return nil
	}
	seq := fmt.Sprintf("\x1b[%d;1H", app.height)
	for i := 0; i < k; i++ {
		seq += "\n"
	}
	if err := app.writeRaw(seq); err != nil {
		return err
	}
	app.origin -= k
	app.session.SetOrigin(app.origin)
	return nil
}

// writeRaw writes control output that is not part of a screen diff.
func (app *Application) writeRaw(s string) error {
	if _, err := io.WriteString(app.term, s); err != nil {
		return NewComponentError("terminal", "write", err)
	}
	return nil
}
