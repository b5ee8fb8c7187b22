package plugin

import "github.com/dshills/inkwell/internal/tree"

// Visibility is the contextual state of an action.
type Visibility struct {
	Visible bool
	Enabled bool
	Active  bool
}

// Tool is the renderable form of an action: an icon, a label, or both.
type Tool struct {
	Icon  string
	Label string
}

// Context is passed to an action handler.
type Context struct {
	// Editor is the editing session the handler mutates.
	Editor tree.Editor

	// Options are the owning plugin's resolved options.
	Options map[string]any

	// Args are optional call-site arguments.
	Args []any
}

// HandlerFunc performs an action. The boolean result carries no meaning for
// the dispatcher.
type HandlerFunc func(ctx *Context) (bool, error)

// VisibilityFunc computes an action's state for the lowest element at the
// selection and its root-level ancestor.
type VisibilityFunc func(el, root *tree.Element) Visibility

// Action is a named, hotkey-bindable editing command.
type Action struct {
	Title       string
	Description string
	Hotkey      string
	Tool        Tool
	Handler     HandlerFunc

	// Visibility is optional. Without it the action is hidden from
	// contextual UI but can still be invoked.
	Visibility VisibilityFunc
}

// ResolvedAction is an action annotated with its owning plugin.
type ResolvedAction struct {
	Action

	// Name is "<plugin>/<index>".
	Name string

	// Plugin is the owning plugin name.
	Plugin string

	// Options are the owning plugin's options.
	Options map[string]any
}
