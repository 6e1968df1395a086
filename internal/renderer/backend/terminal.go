package backend

import (
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// Fallback dimensions when the terminal cannot report its size.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Terminal is the controlling terminal used as a raw byte sink.
// It puts the tty in raw mode, reports its size, and relays resize
// notifications. Input is read with Read.
type Terminal struct {
	tty           tcell.Tty
	resizeHandler func(width, height int)
	started       bool
	mu            sync.Mutex
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	tty, err := openTty()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return NewTerminalFromTty(tty), nil
}

// OpenTerminal opens the terminal device at path, or the controlling
// terminal when path is empty.
func OpenTerminal(path string) (*Terminal, error) {
	if path == "" {
		return NewTerminal()
	}
	tty, err := openTtyAt(path)
	if err != nil {
		return nil, fmt.Errorf("open terminal %s: %w", path, err)
	}
	return NewTerminalFromTty(tty), nil
}

// NewTerminalFromTty wraps an existing tty.
func NewTerminalFromTty(tty tcell.Tty) *Terminal {
	return &Terminal{tty: tty}
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Init switches the terminal to raw mode and starts resize notifications.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}
	if err := t.tty.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	t.tty.NotifyResize(t.handleResize)
	t.started = true
	return nil
}

// Shutdown restores the terminal state saved by Init.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	t.tty.NotifyResize(nil)
	_ = t.tty.Drain()
	_ = t.tty.Stop()
	t.started = false
}

// Close shuts the terminal down and releases the tty.
func (t *Terminal) Close() error {
	t.Shutdown()
	return t.tty.Close()
}

// Size returns the terminal dimensions. When the tty cannot report them it
// falls back to standard output, then to 80x24.
func (t *Terminal) Size() (int, int) {
	if ws, err := t.tty.WindowSize(); err == nil && ws.Width > 0 && ws.Height > 0 {
		return ws.Width, ws.Height
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return defaultWidth, defaultHeight
}

func (t *Terminal) OnResize(callback func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resizeHandler = callback
}

func (t *Terminal) handleResize() {
	width, height := t.Size()

	t.mu.Lock()
	handler := t.resizeHandler
	t.mu.Unlock()

	if handler != nil {
		handler(width, height)
	}
}

func (t *Terminal) Read(p []byte) (int, error) {
	return t.tty.Read(p)
}

func (t *Terminal) Write(p []byte) (int, error) {
	return t.tty.Write(p)
}
