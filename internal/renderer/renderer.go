package renderer

import (
	"io"
	"sync"

	"github.com/dshills/lineview/internal/engine/cursor"
	"github.com/dshills/lineview/internal/logging"
	"github.com/dshills/lineview/internal/renderer/backend"
	"github.com/dshills/lineview/internal/renderer/core"
	"github.com/dshills/lineview/internal/renderer/vscreen"
)

// Options configures a Session.
type Options struct {
	// Width is the terminal width in columns.
	Width int

	// MaxRows bounds the rendered grid (0 = core.DefaultMaxRows).
	MaxRows int

	// TabWidth is the tab stop interval (0 = 8).
	TabWidth int

	// Origin is the terminal row where the prompt starts.
	Origin int

	// MaxRetries bounds retries after short writes
	// (0 = backend.DefaultMaxRetries, negative = none).
	MaxRetries int

	// Logger receives cycle statistics and failures. Nil discards them.
	Logger *logging.Logger
}

// Frame is the editor state drawn by one refresh.
type Frame struct {
	// Prompt is the primary prompt, optionally styled.
	Prompt string

	// Text is the command buffer.
	Text []byte

	// Cursor is the cursor position within Text.
	Cursor cursor.Position

	// Prefixes maps 1-based logical line indexes to continuation prompts.
	Prefixes map[int]string
}

// Session owns the retained screen for one line editor and drives the
// render, diff and apply cycle against a sink.
type Session struct {
	mu sync.Mutex

	sink    io.Writer
	opts    Options
	applier *backend.Applier
	log     *logging.Logger

	// screen is what the terminal is believed to show. Nil forces a full
	// redraw on the next refresh.
	screen        *core.Screen
	dirtyPrefixes bool
	cycles        uint64
}

// NewSession creates a session drawing to sink.
func NewSession(sink io.Writer, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		sink:    sink,
		opts:    opts,
		applier: backend.NewApplier(opts.Origin, opts.MaxRetries),
		log:     log.WithComponent("renderer"),
	}
}

func (s *Session) input(f Frame) vscreen.Input {
	return vscreen.Input{
		Prompt:   f.Prompt,
		Text:     f.Text,
		Cursor:   f.Cursor.ByteOffset(),
		Width:    s.opts.Width,
		Prefixes: f.Prefixes,
		MaxRows:  s.opts.MaxRows,
		TabWidth: s.opts.TabWidth,
	}
}

// Refresh renders f, writes the difference from the retained screen to the
// sink, and retains the new screen. A render failure leaves the retained
// screen untouched. A failed write may have left the terminal partly
// updated, so it invalidates the session and the next refresh repaints
// everything.
func (s *Session) Refresh(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := vscreen.Render(s.input(f))
	if err != nil {
		s.log.Error("render failed: %v", err)
		return err
	}

	if s.dirtyPrefixes {
		for i := range next.Lines {
			if p := next.Lines[i].Prefix; p != nil {
				p.Dirty = true
			}
		}
	}

	var ops []backend.Op
	if s.screen == nil {
		// Nothing is known about the terminal below the origin.
		ops = append(ops, backend.Op{Kind: backend.OpClearToEOS})
	}
	ops = append(ops, backend.Diff(s.screen, next)...)

	if s.log.Enabled(logging.LevelDebug) {
		s.log.Debug("cycle %d: %d rows, %d ops, %d bytes, cursor %v",
			s.cycles, next.Rows(), len(ops), len(s.applier.Encode(ops)), next.Cursor)
	}

	if err := s.applier.Apply(ops, s.sink); err != nil {
		s.log.Error("apply failed: %v", err)
		s.invalidate()
		return err
	}

	for i := range next.Lines {
		if p := next.Lines[i].Prefix; p != nil {
			p.Dirty = false
		}
	}
	s.screen = next
	s.dirtyPrefixes = false
	s.cycles++
	return nil
}

// Resize changes the terminal width. The next refresh redraws everything.
func (s *Session) Resize(width int) error {
	if width <= 0 {
		return core.NewRenderError("resize", core.ErrInvalidInput, "width %d", width)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if width != s.opts.Width {
		s.log.Info("resize %d -> %d", s.opts.Width, width)
	}
	s.opts.Width = width
	s.invalidate()
	return nil
}

// Invalidate forgets the retained screen and cursor so the next refresh
// clears the area and redraws it in full.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
}

func (s *Session) invalidate() {
	s.screen = nil
	s.applier.Reset()
}

// InvalidatePrefixes makes the next refresh repaint every row that carries
// a continuation prompt, for use after the prompts themselves changed.
func (s *Session) InvalidatePrefixes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirtyPrefixes = true
}

// Locate maps a screen position, relative to the prompt origin, back to the
// cursor position it would select in f.
func (s *Session) Locate(f Frame, row, col int) (cursor.Position, error) {
	s.mu.Lock()
	in := s.input(f)
	s.mu.Unlock()

	off := vscreen.Locate(in, core.NewScreenPos(row, col))
	return cursor.FromByteOffset(f.Text, off)
}

// Screen returns the retained screen, or nil before the first successful
// refresh. Callers must not modify it.
func (s *Session) Screen() *core.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Width returns the current terminal width.
func (s *Session) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Width
}

// Layout renders f without drawing it.
func (s *Session) Layout(f Frame) (*core.Screen, error) {
	s.mu.Lock()
	in := s.input(f)
	s.mu.Unlock()
	return vscreen.Render(in)
}

// Origin returns the terminal row where the prompt starts.
func (s *Session) Origin() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applier.Origin
}

// SetOrigin moves the drawing area, for use after the terminal scrolled
// the retained screen to a new row. The retained screen is kept; the
// tracked cursor is not.
func (s *Session) SetOrigin(origin int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applier.Origin = max(origin, 0)
	s.applier.Reset()
}
