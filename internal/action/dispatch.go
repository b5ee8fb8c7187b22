package action

import (
	"fmt"

	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

// Target returns the lowest element at the selection anchor and its
// root-level ancestor. Both are nil without a selection.
func Target(doc *tree.Document) (el, root *tree.Element) {
	if doc.Selection == nil {
		return nil, nil
	}
	p := doc.Selection.Anchor.Path
	if len(p) == 0 {
		return nil, nil
	}
	root, _ = doc.Element(p[:1])
	if n, err := doc.Node(p); err == nil {
		if e, ok := n.(*tree.Element); ok {
			return e, root
		}
	}
	if entry, ok := doc.Above(p, func(*tree.Element, tree.Path) bool { return true }); ok {
		el = entry.Element()
	}
	return el, root
}

// ResolveVisibility computes the action's state at the current selection.
func ResolveVisibility(a plugin.ResolvedAction, ed *editor.Editor) plugin.Visibility {
	if a.Visibility == nil {
		return plugin.Visibility{}
	}
	var el, root *tree.Element
	ed.Read(func(doc *tree.Document) {
		el, root = Target(doc)
		if el != nil {
			el = el.Clone().(*tree.Element)
		}
		if root != nil {
			root = root.Clone().(*tree.Element)
		}
	})
	return a.Visibility(el, root)
}

// Dispatch runs the action's handler in a transaction.
func Dispatch(ed *editor.Editor, a plugin.ResolvedAction, args ...any) error {
	if a.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNoHandler, a.Name)
	}
	return ed.Transact(func() error {
		_, err := a.Handler(&plugin.Context{
			Editor:  ed,
			Options: a.Options,
			Args:    args,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		return nil
	})
}

// Item is an action with its resolved state.
type Item struct {
	plugin.ResolvedAction
	State plugin.Visibility
}

// Available resolves every registered action against the selection, in
// registration order.
func Available(ed *editor.Editor) []Item {
	actions := ed.Registry().Actions()
	items := make([]Item, len(actions))
	for i, a := range actions {
		items[i] = Item{ResolvedAction: a, State: ResolveVisibility(a, ed)}
	}
	return items
}

// DispatchName looks up an action by name and dispatches it.
func DispatchName(ed *editor.Editor, name string, args ...any) error {
	a, ok := ed.Registry().Action(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return Dispatch(ed, a, args...)
}
