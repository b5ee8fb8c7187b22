package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

func newEditor(t *testing.T, defs ...plugin.Definition) *editor.Editor {
	t.Helper()
	ed := editor.New(plugin.NewRegistry(zap.NewNop(), defs...))
	require.NoError(t, ed.Load([]tree.Node{
		tree.NewElement("quote", tree.ClassBlock,
			tree.NewElement("body", tree.ClassText, tree.NewText("hello")),
		),
	}))
	return ed
}

func TestResolveVisibility(t *testing.T) {
	var gotEl, gotRoot *tree.Element
	ed := newEditor(t, plugin.Definition{
		Name: "test/quote",
		Actions: []plugin.Action{
			{Title: "hidden"},
			{
				Title: "quoted",
				Visibility: func(el, root *tree.Element) plugin.Visibility {
					gotEl, gotRoot = el, root
					return plugin.Visibility{Visible: true, Enabled: true, Active: root != nil && root.Type == "quote"}
				},
			},
		},
	})

	items := Available(ed)
	require.Len(t, items, 2)
	assert.Equal(t, plugin.Visibility{}, items[0].State)
	assert.Equal(t, plugin.Visibility{Visible: true, Enabled: true, Active: true}, items[1].State)
	require.NotNil(t, gotEl)
	assert.Equal(t, "body", gotEl.Type)
	assert.Equal(t, "quote", gotRoot.Type)
}

func TestResolveVisibility_NoSelection(t *testing.T) {
	called := false
	a := plugin.ResolvedAction{Action: plugin.Action{
		Visibility: func(el, root *tree.Element) plugin.Visibility {
			called = true
			assert.Nil(t, el)
			assert.Nil(t, root)
			return plugin.Visibility{Visible: true}
		},
	}}
	ed := editor.New(plugin.NewRegistry(zap.NewNop()))

	assert.Equal(t, plugin.Visibility{Visible: true}, ResolveVisibility(a, ed))
	assert.True(t, called)
}

func TestDispatch(t *testing.T) {
	var got *plugin.Context
	ed := newEditor(t, plugin.Definition{
		Name:    "test/insert",
		Options: map[string]any{"suffix": "!"},
		Actions: []plugin.Action{{
			Title: "append",
			Handler: func(ctx *plugin.Context) (bool, error) {
				got = ctx
				return false, tree.InsertText(ctx.Editor, ctx.Options["suffix"].(string)+ctx.Args[0].(string))
			},
		}},
	})

	require.NoError(t, DispatchName(ed, "test/insert/0", "?"))
	require.NotNil(t, got)
	assert.Equal(t, []any{"?"}, got.Args)
	assert.Equal(t, "!?hello", tree.String(ed.Snapshot()[0]))
}

func TestDispatch_Errors(t *testing.T) {
	boom := errors.New("boom")
	ed := newEditor(t, plugin.Definition{
		Name: "test/fail",
		Actions: []plugin.Action{
			{Title: "no handler"},
			{Title: "fails", Handler: func(*plugin.Context) (bool, error) { return true, boom }},
			{Title: "panics", Handler: func(*plugin.Context) (bool, error) { panic("handler panic") }},
		},
	})

	assert.ErrorIs(t, DispatchName(ed, "test/fail/0"), ErrNoHandler)
	assert.ErrorIs(t, DispatchName(ed, "test/fail/1"), boom)
	assert.ErrorIs(t, DispatchName(ed, "missing/0"), ErrUnknownAction)
	assert.PanicsWithValue(t, "handler panic", func() {
		_ = DispatchName(ed, "test/fail/2")
	})
}

func TestKeymap(t *testing.T) {
	actions := []plugin.ResolvedAction{
		{Name: "a/0", Action: plugin.Action{Hotkey: "mod+b"}},
		{Name: "a/1", Action: plugin.Action{Hotkey: "ctrl+b"}},
		{Name: "a/2", Action: plugin.Action{Hotkey: "bogus+b"}},
		{Name: "a/3"},
		{Name: "a/4", Action: plugin.Action{Hotkey: "mod+alt+1"}},
	}
	k := NewKeymap(actions, ModCtrl, zap.NewNop())

	assert.Equal(t, 2, k.Len())

	a, ok := k.LookupString("Ctrl+B")
	require.True(t, ok)
	assert.Equal(t, "a/0", a.Name)

	a, ok = k.Lookup(MustParseHotkey("mod+alt+1"))
	require.True(t, ok)
	assert.Equal(t, "a/4", a.Name)

	_, ok = k.LookupString("meta+b")
	assert.False(t, ok)
	_, ok = k.LookupString("")
	assert.False(t, ok)
}
