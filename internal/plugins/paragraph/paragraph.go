// Package paragraph provides the default textblock.
package paragraph

import (
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the paragraph node type.
const Name = "core/paragraph"

// New returns a paragraph node.
func New(text string) *tree.Element {
	return tree.NewElement(Name, tree.ClassTextblock, tree.NewText(text))
}

// Plugin returns the paragraph plugin definition.
func Plugin() plugin.Definition {
	return plugin.Definition{
		Name:  Name,
		Class: tree.ClassTextblock,
		Component: plugin.ComponentEntry{
			Placeholder: "Type something",
		},
		Actions: []plugin.Action{{
			Title:       "Paragraph",
			Description: "Turn the current block into a paragraph",
			Hotkey:      "mod+alt+0",
			Tool:        plugin.Tool{Icon: "pilcrow", Label: "Text"},
			Handler:     convert,
			Visibility:  visibility,
		}},
	}
}

func convert(ctx *plugin.Context) (bool, error) {
	doc := ctx.Editor.Document()
	cur, ok := blocks.Current(doc)
	if !ok {
		return false, blocks.Insert(ctx.Editor, New(""))
	}
	if !blocks.IsTextblock(cur.Element()) || cur.Element().Type == Name {
		return false, nil
	}
	return true, blocks.Convert(ctx.Editor, cur.Path, Name, tree.ClassTextblock, nil)
}

func visibility(_, root *tree.Element) plugin.Visibility {
	return plugin.Visibility{
		Visible: true,
		Enabled: root == nil || blocks.IsTextblock(root),
		Active:  root != nil && root.Type == Name,
	}
}
