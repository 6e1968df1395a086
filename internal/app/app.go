// Package app runs the interactive line editor: it reads keys from the
// terminal, edits the command buffer and redraws it through a renderer
// session after every event.
package app

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/lineview/internal/config"
	"github.com/dshills/lineview/internal/engine/buffer"
	"github.com/dshills/lineview/internal/engine/history"
	"github.com/dshills/lineview/internal/input/key"
	"github.com/dshills/lineview/internal/logging"
	"github.com/dshills/lineview/internal/prompt"
	"github.com/dshills/lineview/internal/renderer"
	"github.com/dshills/lineview/internal/renderer/layout"
)

// Terminal is the tty the editor runs on, already in raw mode.
// backend.Terminal implements it.
type Terminal interface {
	io.ReadWriter

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// OnResize registers a callback for terminal resize events.
	OnResize(callback func(width, height int))
}

// SubmitFunc receives a submitted command and returns text to print below
// it. A nil SubmitFunc prints nothing.
type SubmitFunc func(line string) string

// Options configures the application.
type Options struct {
	// Config holds the settings. Nil means config.Default().
	Config *config.Config

	// ConfigPath is watched for edits when non-empty; prompts are reloaded
	// from it on change.
	ConfigPath string

	// Logger receives diagnostics. Nil discards them.
	Logger *logging.Logger

	// OnSubmit handles each submitted command.
	OnSubmit SubmitFunc
}

// Application is the line editor.
type Application struct {
	mu sync.Mutex

	term     Terminal
	cfg      *config.Config
	cfgPath  string
	log      *logging.Logger
	id       string
	onSubmit SubmitFunc

	session *renderer.Session
	buf     *buffer.Buffer
	hist    *history.History
	decoder *key.Decoder
	tabs    *layout.TabExpander

	prompts prompt.Provider
	script  *prompt.Lua

	origin  int
	height  int
	running atomic.Bool
}

// New creates an application on term.
func New(term Terminal, opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewComponentError("config", "validate", err)
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	id := uuid.NewString()
	log = log.WithField("session", id)

	width, height := term.Size()
	app := &Application{
		term:     term,
		cfg:      cfg,
		cfgPath:  opts.ConfigPath,
		log:      log.WithComponent("app"),
		id:       id,
		onSubmit: opts.OnSubmit,
		buf:      buffer.NewBuffer(),
		hist:     history.NewHistory(0),
		decoder:  key.NewDecoder(),
		tabs:     layout.NewTabExpander(cfg.TabWidth),
		height:   height,
		session: renderer.NewSession(term, renderer.Options{
			Width:      width,
			MaxRows:    cfg.MaxRows,
			TabWidth:   cfg.TabWidth,
			MaxRetries: cfg.Retries(),
			Logger:     log,
		}),
	}
	app.loadPrompts(cfg)

	app.log.Info("started: %dx%d", width, height)
	return app, nil
}

// SessionID returns the identifier attached to every log line of this run.
func (app *Application) SessionID() string {
	return app.id
}

// Buffer returns the command buffer.
func (app *Application) Buffer() *buffer.Buffer {
	return app.buf
}

// loadPrompts installs the prompt provider described by cfg, replacing
// any previous script.
func (app *Application) loadPrompts(cfg *config.Config) {
	static := prompt.NewStatic(cfg.Prompt, cfg.ContinuationPrompt)

	if app.script != nil {
		_ = app.script.Close()
		app.script = nil
	}
	app.prompts = static

	if cfg.PromptScript == "" {
		return
	}
	script, err := prompt.LoadLuaFile(cfg.PromptScript, static, prompt.WithLogger(app.log))
	if err != nil {
		app.log.Warn("prompt script %s: %v", cfg.PromptScript, err)
		return
	}
	script.SetVar("session", app.id)
	if wd, err := os.Getwd(); err == nil {
		script.SetVar("cwd", wd)
	}
	app.script = script
	app.prompts = script
}

// frame captures the state to draw.
func (app *Application) frame() renderer.Frame {
	text, cur := app.buf.State()
	return renderer.Frame{
		Prompt:   app.prompts.Primary(),
		Text:     text,
		Cursor:   cur,
		Prefixes: app.prompts.Prefixes(text),
	}
}

// Close releases the prompt script.
func (app *Application) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.script != nil {
		err := app.script.Close()
		app.script = nil
		return err
	}
	return nil
}
