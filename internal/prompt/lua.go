package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/lineview/internal/logging"
)

// DefaultCallTimeout bounds a single prompt function call.
const DefaultCallTimeout = 100 * time.Millisecond

// Lua is a Provider backed by a sandboxed Lua script.
//
// The script defines a global prompt() returning the primary prompt and,
// optionally, continuation(n) returning the prompt for logical line n.
// Missing functions and failing calls fall back to the static prompts.
// The script may read values published with SetVar from the lineview table.
//
// gopher-lua states are not goroutine-safe; calls are serialized.
type Lua struct {
	mu sync.Mutex

	L        *lua.LState
	vars     *lua.LTable
	fallback Static
	timeout  time.Duration
	log      *logging.Logger

	closed  bool
	lastErr error
}

// LuaOption configures a Lua provider.
type LuaOption func(*Lua)

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(d time.Duration) LuaOption {
	return func(p *Lua) {
		p.timeout = d
	}
}

// WithLogger sets the logger used to report script failures.
func WithLogger(l *logging.Logger) LuaOption {
	return func(p *Lua) {
		p.log = l.WithComponent("prompt")
	}
}

// LoadLuaFile reads a script from path and creates a provider for it.
func LoadLuaFile(path string, fallback Static, opts ...LuaOption) (*Lua, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt script: %w", err)
	}
	return NewLua(string(code), fallback, opts...)
}

// NewLua runs code in a fresh sandboxed state and returns a provider
// calling into it.
func NewLua(code string, fallback Static, opts ...LuaOption) (*Lua, error) {
	p := &Lua{
		fallback: fallback,
		timeout:  DefaultCallTimeout,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(p.L)

	p.vars = p.L.NewTable()
	p.L.SetField(p.vars, "getenv", p.L.NewFunction(luaGetenv))
	p.L.SetGlobal("lineview", p.vars)

	if err := p.run(func() error { return p.L.DoString(code) }); err != nil {
		p.L.Close()
		return nil, fmt.Errorf("load prompt script: %w", err)
	}
	return p, nil
}

// openSafeLibraries opens the base, table, string and math libraries and
// removes the functions that load code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func luaGetenv(L *lua.LState) int {
	L.Push(lua.LString(os.Getenv(L.CheckString(1))))
	return 1
}

// run executes fn under the call timeout with panic recovery.
func (p *Lua) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	p.L.SetContext(ctx)
	defer p.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// call invokes the global function name. It reports false when the script
// does not define it.
func (p *Lua) call(name string, args ...lua.LValue) (string, bool, error) {
	if p.closed {
		return "", false, ErrClosed
	}

	fn, ok := p.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return "", false, nil
	}

	var ret lua.LValue
	err := p.run(func() error {
		if err := p.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		ret = p.L.Get(-1)
		p.L.Pop(1)
		return nil
	})
	if err != nil {
		return "", true, fmt.Errorf("%s(): %w", name, err)
	}

	s, ok := ret.(lua.LString)
	if !ok {
		return "", true, fmt.Errorf("%s(): %w, got %s", name, ErrBadResult, ret.Type())
	}
	return string(s), true, nil
}

func (p *Lua) fail(err error) {
	if p.lastErr == nil || p.lastErr.Error() != err.Error() {
		p.log.Warn("prompt script failed: %v", err)
	}
	p.lastErr = err
}

// Primary returns the result of prompt(), or the static primary prompt.
func (p *Lua) Primary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok, err := p.call("prompt")
	switch {
	case err != nil:
		p.fail(err)
	case ok:
		p.lastErr = nil
		return s
	}
	return p.fallback.Primary()
}

// Prefixes returns continuation(n) for every line after the first, or the
// static continuation prompt.
func (p *Lua) Prefixes(text []byte) map[int]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return prefixes(text, func(line int) string {
		s, ok, err := p.call("continuation", lua.LNumber(line))
		switch {
		case err != nil:
			p.fail(err)
		case ok:
			return s
		}
		return p.fallback.ContinuationPrompt
	})
}

// SetVar publishes a string to the script as lineview[key].
func (p *Lua) SetVar(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.L.SetField(p.vars, key, lua.LString(value))
}

// Err returns the most recent script failure, or nil after a successful call.
func (p *Lua) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close releases the Lua state.
func (p *Lua) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.L.Close()
	p.closed = true
	return nil
}
