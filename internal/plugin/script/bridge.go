package script

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/security"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/tree"
)

// Handler returns an action handler that calls the global function fn with
// a context table {options = ..., args = {...}}. The function's first
// result is the handler's boolean.
func (s *State) Handler(fn string) plugin.HandlerFunc {
	return func(ctx *plugin.Context) (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return false, ErrClosed
		}

		s.ed = ctx.Editor
		defer func() { s.ed = nil }()

		arg := s.L.NewTable()
		arg.RawSetString("options", toLua(s.L, ctx.Options))
		args := s.L.NewTable()
		for _, a := range ctx.Args {
			args.Append(toLua(s.L, a))
		}
		arg.RawSetString("args", args)

		ret, err := s.call(fn, arg)
		if err != nil {
			return false, fmt.Errorf("%s.%s: %w", s.name, fn, err)
		}
		return lua.LVAsBool(ret), nil
	}
}

// Visibility returns a visibility function that calls the global function
// fn with element tables for el and root (nil without a selection). The
// function returns {visible = ..., enabled = ..., active = ...}. A failing
// call is logged and hides the action.
func (s *State) Visibility(fn string) plugin.VisibilityFunc {
	return func(el, root *tree.Element) plugin.Visibility {
		s.mu.Lock()
		defer s.mu.Unlock()

		ret, err := s.call(fn, elementTable(s.L, el), elementTable(s.L, root))
		if err != nil {
			s.logger.Warn("visibility failed", zap.String("function", fn), zap.Error(err))
			return plugin.Visibility{}
		}
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			return plugin.Visibility{}
		}
		return plugin.Visibility{
			Visible: lua.LVAsBool(tbl.RawGetString("visible")),
			Enabled: lua.LVAsBool(tbl.RawGetString("enabled")),
			Active:  lua.LVAsBool(tbl.RawGetString("active")),
		}
	}
}

func (s *State) installEditorAPI() {
	s.L.SetGlobal("ed", s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"insert_text":  s.luaInsertText,
		"set_property": s.luaSetProperty,
		"text":         s.luaText,
		"type":         s.luaType,
	}))
}

// require raises a Lua error unless c is granted.
func (s *State) require(L *lua.LState, c security.Capability, operation string) {
	if err := s.caps.Require(c, operation); err != nil {
		L.RaiseError("%s", err)
	}
}

// editor returns the bound editor or raises a Lua error.
func (s *State) editor(L *lua.LState) tree.Editor {
	if s.ed == nil {
		L.RaiseError("%s", ErrNoEditor)
	}
	return s.ed
}

// current returns the root-level block holding the selection.
func (s *State) current(L *lua.LState) (tree.Editor, tree.Entry) {
	ed := s.editor(L)
	cur, ok := blocks.Current(ed.Document())
	if !ok {
		L.RaiseError("%s", ErrNoSelection)
	}
	return ed, cur
}

func (s *State) luaInsertText(L *lua.LState) int {
	s.require(L, security.CapabilityWrite, "insert_text")
	text := L.CheckString(1)
	if err := tree.InsertText(s.editor(L), text); err != nil {
		L.RaiseError("insert_text: %v", err)
	}
	return 0
}

func (s *State) luaSetProperty(L *lua.LState) int {
	s.require(L, security.CapabilityWrite, "set_property")
	key := L.CheckString(1)
	value := fromLua(L.Get(2))
	ed, cur := s.current(L)
	if err := tree.SetNodes(ed, cur.Path, map[string]any{key: value}); err != nil {
		L.RaiseError("set_property: %v", err)
	}
	return 0
}

func (s *State) luaText(L *lua.LState) int {
	s.require(L, security.CapabilityRead, "text")
	ed := s.editor(L)
	cur, ok := blocks.Current(ed.Document())
	if !ok {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(tree.String(cur.Node)))
	return 1
}

func (s *State) luaType(L *lua.LState) int {
	s.require(L, security.CapabilityRead, "type")
	ed := s.editor(L)
	cur, ok := blocks.Current(ed.Document())
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(cur.Element().Type))
	return 1
}

// elementTable exposes an element read-only as a plain table.
func elementTable(L *lua.LState, el *tree.Element) lua.LValue {
	if el == nil {
		return lua.LNil
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LString(el.ID))
	t.RawSetString("type", lua.LString(el.Type))
	t.RawSetString("class", lua.LString(el.Class.String()))
	t.RawSetString("text", lua.LString(tree.String(el)))
	t.RawSetString("properties", toLua(L, el.Properties))
	return t
}

// toLua converts a Go value decoded from JSON, YAML or set by a plugin.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, x[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// fromLua converts a Lua value to a property value. Whole numbers become
// int; tables with a sequence part become []any, other tables
// map[string]any.
func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LString:
		return string(x)
	case lua.LNumber:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case *lua.LTable:
		if n := x.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		x.ForEach(func(k, val lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				out[string(ks)] = fromLua(val)
			}
		})
		return out
	default:
		return nil
	}
}
