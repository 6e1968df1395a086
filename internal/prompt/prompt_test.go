package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatic(t *testing.T) {
	p := NewStatic("$ ", "> ")

	if got := p.Primary(); got != "$ " {
		t.Errorf("Primary() = %q, want %q", got, "$ ")
	}

	tests := []struct {
		text string
		want map[int]string
	}{
		{"", nil},
		{"ls -l", nil},
		{"a\n", map[int]string{1: "> "}},
		{"a\nb\nc", map[int]string{1: "> ", 2: "> "}},
	}
	for _, tt := range tests {
		got := p.Prefixes([]byte(tt.text))
		if len(got) != len(tt.want) {
			t.Errorf("Prefixes(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("Prefixes(%q)[%d] = %q, want %q", tt.text, k, got[k], v)
			}
		}
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"\n", 2},
		{"a\nb\n", 3},
	}
	for _, tt := range tests {
		if got := LineCount([]byte(tt.text)); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

var fallback = NewStatic("$ ", "> ")

func TestLuaPrompts(t *testing.T) {
	p, err := NewLua(`
function prompt()
	return "[" .. (lineview.user or "?") .. "] "
end

function continuation(n)
	return string.format("%d| ", n + 1)
end
`, fallback)
	if err != nil {
		t.Fatalf("NewLua() error = %v", err)
	}
	defer p.Close()

	if got := p.Primary(); got != "[?] " {
		t.Errorf("Primary() = %q, want %q", got, "[?] ")
	}
	p.SetVar("user", "root")
	if got := p.Primary(); got != "[root] " {
		t.Errorf("Primary() after SetVar = %q, want %q", got, "[root] ")
	}

	got := p.Prefixes([]byte("a\nb\nc"))
	if got[1] != "2| " || got[2] != "3| " {
		t.Errorf("Prefixes() = %v, want 2| and 3|", got)
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, want nil", p.Err())
	}
}

func TestLuaMissingFunctions(t *testing.T) {
	p, err := NewLua(`x = 1`, fallback)
	if err != nil {
		t.Fatalf("NewLua() error = %v", err)
	}
	defer p.Close()

	if got := p.Primary(); got != "$ " {
		t.Errorf("Primary() = %q, want fallback", got)
	}
	if got := p.Prefixes([]byte("a\nb")); got[1] != "> " {
		t.Errorf("Prefixes() = %v, want fallback", got)
	}
}

func TestLuaFailures(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"runtime error", `function prompt() error("boom") end`, nil},
		{"wrong type", `function prompt() return 42 end`, ErrBadResult},
		{"timeout", `function prompt() while true do end end`, ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLua(tt.code, fallback, WithCallTimeout(20*time.Millisecond))
			if err != nil {
				t.Fatalf("NewLua() error = %v", err)
			}
			defer p.Close()

			if got := p.Primary(); got != "$ " {
				t.Errorf("Primary() = %q, want fallback", got)
			}
			if p.Err() == nil {
				t.Fatal("Err() = nil after a failing call")
			}
			if tt.want != nil && !errors.Is(p.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", p.Err(), tt.want)
			}
		})
	}
}

func TestLuaSandbox(t *testing.T) {
	for _, code := range []string{
		`os.exit(1)`,
		`io.open("/etc/passwd")`,
		`dofile("/etc/passwd")`,
		`require("os")`,
	} {
		if p, err := NewLua(code, fallback); err == nil {
			p.Close()
			t.Errorf("NewLua(%q) succeeded, want error", code)
		}
	}
}

func TestLuaGetenv(t *testing.T) {
	t.Setenv("LINEVIEW_TEST_PROMPT", "ok")

	p, err := NewLua(`function prompt() return lineview.getenv("LINEVIEW_TEST_PROMPT") end`, fallback)
	if err != nil {
		t.Fatalf("NewLua() error = %v", err)
	}
	defer p.Close()

	if got := p.Primary(); got != "ok" {
		t.Errorf("Primary() = %q, want %q", got, "ok")
	}
}

func TestLoadLuaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.lua")
	if err := os.WriteFile(path, []byte(`function prompt() return "% " end`), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadLuaFile(path, fallback)
	if err != nil {
		t.Fatalf("LoadLuaFile() error = %v", err)
	}
	if got := p.Primary(); got != "% " {
		t.Errorf("Primary() = %q, want %q", got, "% ")
	}

	p.Close()
	if got := p.Primary(); got != "$ " {
		t.Errorf("Primary() after Close = %q, want fallback", got)
	}
	if !errors.Is(p.Err(), ErrClosed) {
		t.Errorf("Err() after Close = %v, want ErrClosed", p.Err())
	}

	if _, err := LoadLuaFile(filepath.Join(t.TempDir(), "missing.lua"), fallback); err == nil {
		t.Error("LoadLuaFile() of a missing file should fail")
	}
}

func TestProvidersSatisfyInterface(t *testing.T) {
	var _ Provider = Static{}
	var _ Provider = (*Lua)(nil)
}
