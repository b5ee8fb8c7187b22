package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

type stubConsumer struct {
	mime  string
	nodes []tree.Node
	err   error
}

func (c stubConsumer) Consumes(res plugin.Resource) bool {
	return res.MIME == c.mime
}

func (c stubConsumer) Consume(_ context.Context, _ plugin.Resource) ([]tree.Node, error) {
	return c.nodes, c.err
}

func def(name string, titles ...string) plugin.Definition {
	d := plugin.Definition{Name: name, Class: tree.ClassBlock}
	for _, t := range titles {
		d.Actions = append(d.Actions, plugin.Action{Title: t})
	}
	return d
}

func names(defs []plugin.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, plugin.ValidateName("core/paragraph"))
	assert.NoError(t, plugin.ValidateName("acme/callout/title"))

	for _, name := range []string{"", "paragraph", "/paragraph", "core/"} {
		assert.ErrorIs(t, plugin.ValidateName(name), plugin.ErrInvalidName, name)
	}
}

func TestConstraints(t *testing.T) {
	var c plugin.Constraints
	assert.True(t, c.BreakAllowed())
	assert.True(t, c.SoftBreakAllowed())

	c.AllowBreak = plugin.Bool(false)
	c.AllowSoftBreak = plugin.Bool(true)
	assert.False(t, c.BreakAllowed())
	assert.True(t, c.SoftBreakAllowed())
}

func TestRegister(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	list := plugin.Register(nil, def("a/one"), logger)
	list = plugin.Register(list, def("a/two"), logger)
	list = plugin.Register(list, def("a/three"), logger)
	require.Equal(t, []string{"a/one", "a/two", "a/three"}, names(list))
	assert.Zero(t, logs.Len())

	replaced := plugin.Register(list, def("a/two", "Replaced"), logger)
	assert.Equal(t, []string{"a/one", "a/two", "a/three"}, names(replaced))
	assert.Len(t, replaced[1].Actions, 1)
	assert.Empty(t, list[1].Actions, "input list is not modified")
	assert.Equal(t, 1, logs.FilterMessage("plugin override").Len())
}

func TestDeriveActions(t *testing.T) {
	a := def("a/one", "First", "Second")
	a.Options = map[string]any{"k": 1}
	b := def("b/two", "Third")

	actions := plugin.DeriveActions([]plugin.Definition{a, b})
	require.Len(t, actions, 3)

	assert.Equal(t, "a/one/0", actions[0].Name)
	assert.Equal(t, "a/one/1", actions[1].Name)
	assert.Equal(t, "b/two/0", actions[2].Name)
	assert.Equal(t, "Second", actions[1].Title)
	assert.Equal(t, "a/one", actions[1].Plugin)
	assert.Equal(t, 1, actions[0].Options["k"])
	assert.Nil(t, actions[2].Options)

	assert.Empty(t, plugin.DeriveActions(nil))
}

func TestDeriveComponentTree(t *testing.T) {
	quote := plugin.Definition{
		Name:  "core/quote",
		Class: tree.ClassBlock,
		Component: plugin.ComponentEntry{
			Children: []plugin.ComponentEntry{
				{Type: "body", Class: tree.ClassText, Placeholder: "Quote"},
				{Type: "caption", Class: tree.ClassText},
			},
		},
	}
	inline := plugin.Definition{
		Name:      "core/link",
		Class:     tree.ClassBlock,
		Component: plugin.ComponentEntry{Class: tree.ClassInline},
	}

	components := plugin.DeriveComponentTree([]plugin.Definition{quote, inline}, nil)
	require.Len(t, components, 4)

	root := components["core/quote"]
	assert.Equal(t, "core/quote", root.Type)
	assert.Equal(t, tree.ClassBlock, root.Class)

	body := components["core/quote/body"]
	assert.Equal(t, "core/quote/body", body.Type)
	assert.Equal(t, tree.ClassText, body.Class)
	assert.Equal(t, "Quote", body.Placeholder)
	assert.Contains(t, components, "core/quote/caption")

	assert.Equal(t, tree.ClassInline, components["core/link"].Class)
}

func TestDeriveComponentTree_Duplicate(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	first := plugin.Definition{
		Name:      "a/x",
		Component: plugin.ComponentEntry{Children: []plugin.ComponentEntry{{Type: "y", Placeholder: "first"}}},
	}
	second := plugin.Definition{Name: "a/x/y", Component: plugin.ComponentEntry{Placeholder: "second"}}

	components := plugin.DeriveComponentTree([]plugin.Definition{first, second}, zap.New(core))
	assert.Equal(t, "second", components["a/x/y"].Placeholder)

	entries := logs.FilterMessage("duplicate component type").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a/x", entries[0].ContextMap()["previous"])
}

func TestRegistry(t *testing.T) {
	r := plugin.NewRegistry(nil, def("a/one", "A"), def("b/two", "B1", "B2"))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"a/one", "b/two"}, names(r.Plugins()))
	assert.Len(t, r.Actions(), 3)

	p, err := r.Plugin("b/two")
	require.NoError(t, err)
	assert.Equal(t, "b/two", p.Name)

	_, err = r.Plugin("c/none")
	assert.ErrorIs(t, err, plugin.ErrPluginNotFound)

	a, ok := r.Action("b/two/1")
	require.True(t, ok)
	assert.Equal(t, "B2", a.Title)
	_, ok = r.Action("b/two/2")
	assert.False(t, ok)

	c, ok := r.Component("a/one")
	require.True(t, ok)
	assert.Equal(t, tree.ClassBlock, c.Class)
	assert.Len(t, r.Components(), 2)
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := plugin.NewRegistry(zap.NewNop(), def("a/one", "A"), def("b/two", "B"))

	r.Register(def("a/one", "A1", "A2"))
	assert.Equal(t, []string{"a/one", "b/two"}, names(r.Plugins()))
	actions := r.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, "a/one/1", actions[1].Name)
	assert.Equal(t, "b/two/0", actions[2].Name)

	r.Register(def("c/three"))
	assert.Equal(t, 3, r.Count())

	assert.True(t, r.Unregister("a/one"))
	assert.False(t, r.Unregister("a/one"))
	assert.Equal(t, []string{"b/two", "c/three"}, names(r.Plugins()))
	_, ok := r.Action("a/one/0")
	assert.False(t, ok)
	_, ok = r.Component("a/one")
	assert.False(t, ok)
}

func TestRegistry_PluginsIsCopy(t *testing.T) {
	r := plugin.NewRegistry(nil, def("a/one"))
	list := r.Plugins()
	list[0].Name = "x/y"

	_, err := r.Plugin("a/one")
	assert.NoError(t, err)
}

func TestRegistry_Consume(t *testing.T) {
	img := tree.NewElement("core/image", tree.ClassVoid)
	failing := def("a/fail")
	failing.Consumer = stubConsumer{mime: "image/gif", err: errors.New("corrupt")}
	images := def("a/image")
	images.Consumer = stubConsumer{mime: "image/png", nodes: []tree.Node{img}}
	r := plugin.NewRegistry(nil, def("a/plain"), failing, images)

	nodes, err := r.Consume(context.Background(), plugin.Resource{Name: "a.png", MIME: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, []tree.Node{img}, nodes)

	_, err = r.Consume(context.Background(), plugin.Resource{Name: "b.gif", MIME: "image/gif"})
	require.Error(t, err)
	assert.Equal(t, "plugin a/fail: consume b.gif: corrupt", err.Error())

	_, err = r.Consume(context.Background(), plugin.Resource{Name: "c.txt", MIME: "text/plain"})
	assert.ErrorIs(t, err, plugin.ErrNoConsumer)
}

func TestChildType(t *testing.T) {
	assert.Equal(t, "core/quote/body", plugin.ChildType("core/quote", "body"))
}
