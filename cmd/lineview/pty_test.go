//go:build linux || darwin

package main

import (
	"bytes"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

// ptyOutput collects everything the editor writes to the terminal.
type ptyOutput struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *ptyOutput) copyFrom(r io.Reader) {
	b := make([]byte, 1024)
	for {
		n, err := r.Read(b)
		o.mu.Lock()
		o.buf.Write(b[:n])
		o.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (o *ptyOutput) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		o.mu.Lock()
		ok := bytes.Contains(o.buf.Bytes(), []byte(want))
		got := o.buf.String()
		o.mu.Unlock()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("terminal output %q never contained %q", got, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEditorOnPty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer func() { _ = ptmx.Close() }()
	defer func() { _ = tty.Close() }()
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	out := &ptyOutput{}
	go out.copyFrom(ptmx)

	dir := t.TempDir()
	done := make(chan error, 1)
	go func() {
		_, err := execute(t,
			"--tty", tty.Name(),
			"--config", filepath.Join(dir, "config.toml"),
			"--log-file", filepath.Join(dir, "lineview.log"),
			"--no-mouse",
		)
		done <- err
	}()

	out.waitFor(t, "\x1b[6n")
	if _, err := ptmx.Write([]byte("\x1b[5;1R")); err != nil {
		t.Fatal(err)
	}
	out.waitFor(t, "\x1b[5;1H\x1b[J$ ")

	if _, err := ptmx.Write([]byte("hi\r")); err != nil {
		t.Fatal(err)
	}
	out.waitFor(t, "\r\nhi\r\n")

	if _, err := ptmx.Write([]byte{0x04}); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("lineview: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("lineview did not exit after Ctrl-D")
	}
}
