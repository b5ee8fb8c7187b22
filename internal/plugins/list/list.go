// Package list provides bulleted and numbered lists and the "-" and "1."
// input shortcuts.
package list

import (
	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the list node type.
const Name = "core/list"

// OrderedKey marks numbered lists.
const OrderedKey = "ordered"

// ItemType is the list item node type.
var ItemType = plugin.ChildType(Name, "item")

var item = plugin.ComponentEntry{
	Type:        "item",
	Class:       tree.ClassText,
	Placeholder: "List item",
}

// New returns a list node with one item per text.
func New(ordered bool, items ...string) *tree.Element {
	el := tree.NewElement(Name, tree.ClassBlock)
	el.SetProperty(OrderedKey, ordered)
	for _, s := range items {
		el.Children = append(el.Children, tree.NewElement(ItemType, tree.ClassText, tree.NewText(s)))
	}
	return el
}

// Plugin returns the list plugin definition.
func Plugin() plugin.Definition {
	return plugin.Definition{
		Name:  Name,
		Class: tree.ClassBlock,
		Component: plugin.ComponentEntry{
			Constraints: plugin.Constraints{
				NormalizeNode: normalize.Repeated(item),
			},
			Children: []plugin.ComponentEntry{item},
		},
		Events: plugin.Events{
			OnInsertText: shortcut,
		},
		Actions: []plugin.Action{
			{
				Title:       "Bulleted list",
				Description: "Toggle a bulleted list",
				Hotkey:      "mod+shift+8",
				Tool:        plugin.Tool{Icon: "list", Label: "List"},
				Handler:     toggle(false),
				Visibility:  visibility(false),
			},
			{
				Title:       "Numbered list",
				Description: "Toggle a numbered list",
				Hotkey:      "mod+shift+7",
				Tool:        plugin.Tool{Icon: "list-ordered", Label: "Numbered"},
				Handler:     toggle(true),
				Visibility:  visibility(true),
			},
		},
	}
}

// Ordered reports whether el is a numbered list.
func Ordered(el *tree.Element) bool {
	v, _ := el.Property(OrderedKey)
	b, _ := v.(bool)
	return b
}

// toggle wraps the current textblock in a list, switches a list of the other
// kind, or unwraps a list of the same kind into paragraphs.
func toggle(ordered bool) plugin.HandlerFunc {
	return func(ctx *plugin.Context) (bool, error) {
		ed := ctx.Editor
		cur, ok := blocks.Current(ed.Document())
		if !ok {
			return true, blocks.Insert(ed, New(ordered, ""))
		}
		el := cur.Element()
		switch {
		case el.Type == Name && Ordered(el) == ordered:
			return true, unwrap(ed, cur.Path, len(el.Children))
		case el.Type == Name:
			return true, tree.SetNodes(ed, cur.Path, map[string]any{OrderedKey: ordered})
		case blocks.IsTextblock(el):
			return true, wrap(ed, cur.Path, ordered)
		}
		return false, nil
	}
}

// wrap converts the textblock at at into an item and wraps it in a list.
func wrap(ed tree.Editor, at tree.Path, ordered bool) error {
	if err := blocks.Convert(ed, at, ItemType, tree.ClassText, nil); err != nil {
		return err
	}
	wrapper := tree.NewElement(Name, tree.ClassBlock)
	wrapper.SetProperty(OrderedKey, ordered)
	return tree.WrapNodes(ed, at.Parent(), at.Last(), at.Last()+1, wrapper)
}

// unwrap turns every item into a paragraph and lifts them out of the list.
func unwrap(ed tree.Editor, at tree.Path, n int) error {
	for i := 0; i < n; i++ {
		if err := blocks.Convert(ed, at.Child(i), paragraph.Name, tree.ClassTextblock, nil); err != nil {
			return err
		}
	}
	return tree.UnwrapNodes(ed, at)
}

func visibility(ordered bool) plugin.VisibilityFunc {
	return func(_, root *tree.Element) plugin.Visibility {
		isList := root != nil && root.Type == Name
		return plugin.Visibility{
			Visible: true,
			Enabled: root == nil || isList || blocks.IsTextblock(root),
			Active:  isList && Ordered(root) == ordered,
		}
	}
}

// shortcut turns "-" or "1." followed by a space at the start of a
// paragraph into a list.
func shortcut(ed tree.Editor, text string, next func() error) error {
	if text != " " {
		return next()
	}
	cur, prefix, ok := blocks.Prefix(ed.Document())
	if !ok || cur.Element().Type != paragraph.Name {
		return next()
	}
	var ordered bool
	switch prefix {
	case "-", "*":
	case "1.":
		ordered = true
	default:
		return next()
	}
	if err := blocks.TrimPrefix(ed, cur.Path, len(prefix)); err != nil {
		return err
	}
	return wrap(ed, cur.Path, ordered)
}
