package behavior

import (
	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/tree"
)

// PluginEvents forwards text insertion through every registered plugin's
// OnInsertText hook, in registration order.
type PluginEvents struct{}

// Name implements editor.Interceptor.
func (PluginEvents) Name() string { return "plugin-events" }

// Priority implements editor.Interceptor.
func (PluginEvents) Priority() int { return editor.PriorityPlugin }

// InsertText implements editor.TextInserter.
func (PluginEvents) InsertText(ed *editor.Editor, text string, next func() error) error {
	var hooks []func(tree.Editor, string, func() error) error
	for _, p := range ed.Registry().Plugins() {
		if p.Events.OnInsertText != nil {
			hooks = append(hooks, p.Events.OnInsertText)
		}
	}
	var call func(i int) error
	call = func(i int) error {
		if i == len(hooks) {
			return next()
		}
		return hooks[i](ed, text, func() error { return call(i + 1) })
	}
	return call(0)
}

