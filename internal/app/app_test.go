package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/lineview/internal/config"
	"github.com/dshills/lineview/internal/renderer/backend"
)

// fakeTerm is a terminal whose input is a pipe and whose output is recorded.
type fakeTerm struct {
	*backend.NullSink
	in io.Reader
}

func (t *fakeTerm) Read(p []byte) (int, error) {
	return t.in.Read(p)
}

type harness struct {
	app  *Application
	sink *backend.NullSink
	in   *io.PipeWriter
	done chan error

	mu        sync.Mutex
	submitted []string
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Mouse = false
	return cfg
}

func newHarness(t *testing.T, cfg config.Config, width, height int) *harness {
	t.Helper()

	pr, pw := io.Pipe()
	h := &harness{
		sink: backend.NewNullSink(width, height),
		in:   pw,
		done: make(chan error, 1),
	}
	app, err := New(&fakeTerm{NullSink: h.sink, in: pr}, Options{
		Config: &cfg,
		OnSubmit: func(line string) string {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.submitted = append(h.submitted, line)
			return strings.ToUpper(line) + "\nok"
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.app = app
	t.Cleanup(func() {
		_ = pw.Close()
		_ = app.Close()
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	go func() { h.done <- h.app.Run(ctx) }()
}

func (h *harness) send(t *testing.T, s string) {
	t.Helper()
	if _, err := io.WriteString(h.in, s); err != nil {
		t.Fatalf("write input %q: %v", s, err)
	}
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func (h *harness) close(t *testing.T) error {
	t.Helper()
	_ = h.in.Close()
	return h.wait(t)
}

func waitForOutput(t *testing.T, sink *backend.NullSink, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !bytes.Contains(sink.Bytes(), []byte(want)) {
		if time.Now().After(deadline) {
			t.Fatalf("output %q never contained %q", sink.Bytes(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunDrawsAtReportedRow(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[3;1R")
	h.send(t, "ab")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "\x1b[6n" +
		"\x1b[3;1H\x1b[J$ \x1b[3;3H" +
		"ab\x1b[3;5H"
	if got := string(h.sink.Bytes()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunWithoutCursorReport(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	waitForOutput(t, h.sink, "$ ")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "\x1b[6n" + seqClearScreen + "\x1b[1;1H\x1b[J$ \x1b[1;3H"
	if got := string(h.sink.Bytes()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunMouseMode(t *testing.T) {
	cfg := testConfig()
	cfg.Mouse = true
	h := newHarness(t, cfg, 20, 10)
	h.start(t)

	h.send(t, "\x1b[1;1R")
	h.send(t, "hello")
	h.send(t, "\x1b[<0;4;1M")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := string(h.sink.Bytes())
	if !strings.HasPrefix(out, seqMouseOn) {
		t.Errorf("output %q does not enable mouse reporting", out)
	}
	if !strings.HasSuffix(out, seqMouseOff) {
		t.Errorf("output %q does not disable mouse reporting", out)
	}
	if got := h.app.Buffer().Cursor().ByteOffset(); got != 1 {
		t.Errorf("cursor after click = %d, want 1", got)
	}
}

func TestRunSubmit(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[3;1R")
	h.send(t, "ls\r")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "\x1b[6n" +
		"\x1b[3;1H\x1b[J$ \x1b[3;3H" +
		"\x1b[3;5H\r\nLS\r\nok\r\n" +
		"\x1b[6;1H\x1b[J$ \x1b[6;3H"
	if got := string(h.sink.Bytes()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(h.submitted) != 1 || h.submitted[0] != "ls" {
		t.Errorf("submitted = %q, want [ls]", h.submitted)
	}
	if h.app.Buffer().Len() != 0 {
		t.Errorf("buffer = %q after submit, want empty", h.app.Buffer().String())
	}
}

func TestRunCancelLine(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[3;1R")
	h.send(t, "ab\x03")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "\x1b[3;5H^C\r\n\x1b[4;1H\x1b[J$ \x1b[4;3H"
	if got := string(h.sink.Bytes()); !strings.HasSuffix(got, want) {
		t.Errorf("output = %q, want suffix %q", got, want)
	}
	if len(h.submitted) != 0 {
		t.Errorf("submitted = %q, want none", h.submitted)
	}
}

func TestRunQuitOnEmptyLine(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[1;1R")
	h.send(t, "\x04")
	if err := h.wait(t); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunScrollsAtBottom(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 3)
	h.start(t)

	h.send(t, "\x1b[3;1R")
	h.send(t, "a\\\r")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := string(h.sink.Bytes())
	if !strings.Contains(out, "\x1b[3;1H\n") {
		t.Errorf("output %q does not scroll the terminal", out)
	}
	if !strings.HasSuffix(out, "\x1b[2;3Ha\\\x1b[3;1H> \x1b[3;3H") {
		t.Errorf("output %q does not redraw one row higher", out)
	}
	if got := h.app.session.Origin(); got != 1 {
		t.Errorf("origin = %d, want 1", got)
	}
}

func TestRunResize(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[1;1R")
	h.send(t, "abcdef")
	waitForOutput(t, h.sink, "abcdef")
	h.sink.Resize(4, 10)
	waitForOutput(t, h.sink, "\x1b[1;1H\x1b[J$ ab")
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := h.app.session.Screen().Text(); got != "$ ab\ncdef\n" {
		t.Errorf("screen = %q, want %q", got, "$ ab\ncdef\n")
	}
}

func TestRunAlreadyRunning(t *testing.T) {
	h := newHarness(t, testConfig(), 20, 10)
	h.start(t)

	h.send(t, "\x1b[1;1R")
	waitForOutput(t, h.sink, "$ ")
	if err := h.app.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}
	if err := h.close(t); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunReloadsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("prompt = \"$ \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Mouse = false

	pr, pw := io.Pipe()
	sink := backend.NewNullSink(20, 10)
	app, err := New(&fakeTerm{NullSink: sink, in: pr}, Options{Config: cfg, ConfigPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	if _, err := io.WriteString(pw, "\x1b[1;1R"); err != nil {
		t.Fatal(err)
	}
	waitForOutput(t, sink, "$ ")

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("prompt = \"% \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForOutput(t, sink, "%")

	_ = pw.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if got := app.cfg.Prompt; got != "% " {
		t.Errorf("prompt = %q, want %q", got, "% ")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TabWidth = 0
	_, err := New(&fakeTerm{NullSink: backend.NewNullSink(20, 10)}, Options{Config: &cfg})
	if !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("New = %v, want ErrInvalidSetting", err)
	}
}

func TestNewPromptScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.lua")
	script := `function prompt() return "[" .. lineview.session:sub(1, 4) .. "] " end`
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.PromptScript = path

	app, err := New(&fakeTerm{NullSink: backend.NewNullSink(20, 10)}, Options{Config: &cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	want := "[" + app.SessionID()[:4] + "] "
	if got := app.frame().Prompt; got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestNewMissingPromptScript(t *testing.T) {
	cfg := testConfig()
	cfg.PromptScript = filepath.Join(t.TempDir(), "missing.lua")

	app, err := New(&fakeTerm{NullSink: backend.NewNullSink(20, 10)}, Options{Config: &cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := app.frame().Prompt; got != "$ " {
		t.Errorf("prompt = %q, want fallback %q", got, "$ ")
	}
}
