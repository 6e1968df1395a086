package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t)

	if err := w.Watch(filepath.Join(dir, "a.toml")); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Watch(filepath.Join(dir, "b.toml")); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Watch(filepath.Join(dir, "a.toml")); err != nil {
		t.Fatalf("second Watch() error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() = %d files, want 2", got)
	}

	if err := w.Unwatch(filepath.Join(dir, "a.toml")); err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 1 {
		t.Errorf("WatchedFiles() = %d files, want 1", got)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "c.toml")); err == nil {
		t.Error("Watch() in a missing directory should fail")
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("a = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(100*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	events := make(chan Event, 10)
	w.OnChange(func(ev Event) { events <- ev })
	w.Start()
	if !w.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	// A sibling file is ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("a = 2"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ev := waitEvent(t, events)
	want, _ := filepath.Abs(path)
	if ev.Path != want {
		t.Errorf("event path = %q, want %q", ev.Path, want)
	}
	if ev.Op != OpWrite {
		t.Errorf("event op = %v, want write", ev.Op)
	}

	select {
	case extra := <-events:
		t.Errorf("burst produced a second event %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	w := newWatcher(t, WithDebounce(0))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	events := make(chan Event, 10)
	w.OnChange(func(ev Event) { events <- ev })
	w.Start()

	if err := os.WriteFile(path, []byte("prompt: x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ev := waitEvent(t, events); ev.Op != OpCreate {
		t.Errorf("first event op = %v, want create", ev.Op)
	}
}

func TestWatcher_PanickingHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w := newWatcher(t, WithDebounce(10*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	events := make(chan Event, 10)
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(ev Event) { events <- ev })
	w.Start()

	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w := newWatcher(t)
	w.Stop()
	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		prev, next Operation
		want       Operation
	}{
		{OpCreate, OpWrite, OpCreate},
		{OpWrite, OpWrite, OpWrite},
		{OpWrite, OpRemove, OpRemove},
		{OpRemove, OpCreate, OpCreate},
		{OpRemove, OpWrite, OpCreate},
		{OpCreate, OpRename, OpRename},
	}
	for _, tt := range tests {
		got := coalesce(Event{Path: "/p", Op: tt.prev}, Event{Path: "/p", Op: tt.next})
		if got.Op != tt.want {
			t.Errorf("coalesce(%v, %v) = %v, want %v", tt.prev, tt.next, got.Op, tt.want)
		}
	}
}
