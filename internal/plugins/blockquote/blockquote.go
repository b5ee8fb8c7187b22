// Package blockquote provides a quotation block with a body and a caption.
package blockquote

import (
	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the blockquote node type.
const Name = "core/blockquote"

// Child node types.
var (
	BodyType    = plugin.ChildType(Name, "body")
	CaptionType = plugin.ChildType(Name, "caption")
)

var shape = []plugin.ComponentEntry{
	{
		Type:        "body",
		Class:       tree.ClassText,
		Placeholder: "Quote",
		Constraints: plugin.Constraints{AllowBreak: plugin.Bool(false)},
	},
	{
		Type:        "caption",
		Class:       tree.ClassText,
		Placeholder: "Caption",
		Constraints: plugin.Constraints{
			AllowBreak:     plugin.Bool(false),
			AllowSoftBreak: plugin.Bool(false),
		},
	},
}

// New returns a blockquote node.
func New(body, caption string) *tree.Element {
	return tree.NewElement(Name, tree.ClassBlock,
		tree.NewElement(BodyType, tree.ClassText, &tree.Text{Text: body, Placeholder: shape[0].Placeholder}),
		tree.NewElement(CaptionType, tree.ClassText, &tree.Text{Text: caption, Placeholder: shape[1].Placeholder}),
	)
}

// Plugin returns the blockquote plugin definition.
func Plugin() plugin.Definition {
	return plugin.Definition{
		Name:  Name,
		Class: tree.ClassBlock,
		Component: plugin.ComponentEntry{
			Constraints: plugin.Constraints{
				NormalizeNode: normalize.Composite(shape, normalize.Demotion{
					Type:  paragraph.Name,
					Class: tree.ClassTextblock,
				}),
			},
			Children: shape,
		},
		Actions: []plugin.Action{{
			Title:       "Quote",
			Description: "Insert a quotation",
			Hotkey:      "mod+shift+9",
			Tool:        plugin.Tool{Icon: "quote", Label: "Quote"},
			Handler:     insert,
			Visibility:  visibility,
		}},
	}
}

// insert adds a quotation. A non-empty paragraph at the caret becomes its
// body.
func insert(ctx *plugin.Context) (bool, error) {
	doc := ctx.Editor.Document()
	if cur, ok := blocks.Current(doc); ok {
		el := cur.Element()
		if el.Type == paragraph.Name && tree.String(el) != "" {
			body := tree.String(el)
			if err := tree.RemoveNodes(ctx.Editor, cur.Path); err != nil {
				return false, err
			}
			if err := tree.InsertNodes(ctx.Editor, cur.Path, New(body, "")); err != nil {
				return false, err
			}
			if end, ok := ctx.Editor.Document().End(cur.Path.Child(0)); ok {
				return true, tree.Select(ctx.Editor, tree.Collapsed(end))
			}
			return true, nil
		}
	}
	return true, blocks.Insert(ctx.Editor, New("", ""))
}

func visibility(_, root *tree.Element) plugin.Visibility {
	return plugin.Visibility{
		Visible: true,
		Enabled: root == nil || root.Type != Name,
		Active:  root != nil && root.Type == Name,
	}
}
