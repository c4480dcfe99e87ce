package values

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultScriptTimeout bounds a single script run.
const DefaultScriptTimeout = 2 * time.Second

// Script errors.
var (
	ErrNoValuesFunc = errors.New("script does not define values(target)")
	ErrBadResult    = errors.New("values(target) must return a list of strings")
)

// ScriptSource produces candidates by running a Lua script that defines
//
//	function values(target) return {"a", "b"} end
//
// Scripts run in a fresh state with only the base, table, string and math
// libraries, and without dofile, loadfile, load or require. The helper
// scrape(text, prefix) is available and behaves like Scrape.
type ScriptSource struct {
	path    string
	timeout time.Duration
}

// ScriptOption configures a ScriptSource.
type ScriptOption func(*ScriptSource)

// WithScriptTimeout sets the run timeout.
func WithScriptTimeout(d time.Duration) ScriptOption {
	return func(s *ScriptSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScriptSource creates a source for the script at path.
func NewScriptSource(path string, opts ...ScriptOption) *ScriptSource {
	s := &ScriptSource{path: path, timeout: DefaultScriptTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the script path.
func (s *ScriptSource) Path() string {
	return s.path
}

// Values runs the script and returns values(target).
func (s *ScriptSource) Values(ctx context.Context, target string) ([]string, error) {
	L := newSandboxedState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoFile(s.path); err != nil {
		return nil, fmt.Errorf("script %s: %w", s.path, err)
	}
	return callValues(L, s.path, target)
}

// EvalScript runs code as a script source. name labels errors.
func EvalScript(ctx context.Context, name, code, target string) ([]string, error) {
	L := newSandboxedState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, DefaultScriptTimeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(code); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return callValues(L, name, target)
}

func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("scrape", L.NewFunction(luaScrape))
	return L
}

// luaScrape implements scrape(text, prefix) -> {names...}.
func luaScrape(L *lua.LState) int {
	text := L.CheckString(1)
	prefix := []rune(L.CheckString(2))
	if len(prefix) != 1 {
		L.ArgError(2, "prefix must be a single character")
		return 0
	}

	tbl := L.NewTable()
	for _, name := range Scrape(text, prefix[0]) {
		tbl.Append(lua.LString(name))
	}
	L.Push(tbl)
	return 1
}

func callValues(L *lua.LState, name, target string) ([]string, error) {
	fn, ok := L.GetGlobal("values").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("script %s: %w", name, ErrNoValuesFunc)
	}

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(target)); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s: %w, got %s", name, ErrBadResult, ret.Type())
	}

	out := make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		v, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("script %s: %w, item %d is %s", name, ErrBadResult, i, tbl.RawGetInt(i).Type())
		}
		out = append(out, string(v))
	}
	return out, nil
}
