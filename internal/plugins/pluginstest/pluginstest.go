// Package pluginstest provides an editor fixture for plugin tests.
package pluginstest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/action"
	"github.com/dshills/inkwell/internal/behavior"
	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// NewEditor returns an editor with the paragraph plugin, the given plugins
// and the standard behaviors installed.
func NewEditor(t *testing.T, defs ...plugin.Definition) *editor.Editor {
	t.Helper()
	logger := zap.NewNop()
	reg := plugin.NewRegistry(logger, append([]plugin.Definition{paragraph.Plugin()}, defs...)...)
	return editor.New(reg,
		editor.WithLogger(logger),
		editor.WithInterceptors(
			behavior.NewBreaks(logger),
			behavior.NewDeletion(logger),
			behavior.PluginEvents{},
		),
	)
}

// Load replaces the document and fails the test on error.
func Load(t *testing.T, ed *editor.Editor, nodes ...tree.Node) {
	t.Helper()
	require.NoError(t, ed.Load(nodes))
}

// Caret places a collapsed selection.
func Caret(t *testing.T, ed *editor.Editor, path tree.Path, offset int) {
	t.Helper()
	require.NoError(t, ed.Select(tree.Collapsed(tree.Point{Path: path, Offset: offset})))
}

// Dispatch runs the named action.
func Dispatch(t *testing.T, ed *editor.Editor, name string, args ...any) {
	t.Helper()
	require.NoError(t, action.DispatchName(ed, name, args...))
}

// Root returns a copy of the root-level element at index i.
func Root(t *testing.T, ed *editor.Editor, i int) *tree.Element {
	t.Helper()
	nodes := ed.Snapshot()
	require.Greater(t, len(nodes), i)
	el, ok := nodes[i].(*tree.Element)
	require.True(t, ok)
	return el
}

// Types returns the types of the root-level elements.
func Types(ed *editor.Editor) []string {
	var out []string
	for _, n := range ed.Snapshot() {
		if el, ok := n.(*tree.Element); ok {
			out = append(out, el.Type)
		}
	}
	return out
}

// ChildTypes returns the child element types of el.
func ChildTypes(el *tree.Element) []string {
	var out []string
	for _, c := range el.Children {
		if child, ok := c.(*tree.Element); ok {
			out = append(out, child.Type)
		}
	}
	return out
}
