// Package codeblock provides a titled code block.
//
// Enter inside the code inserts a newline instead of splitting the block;
// the title rejects line breaks entirely.
package codeblock

import (
	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the code block node type.
const Name = "core/codeblock"

// LanguageKey is the code language property.
const LanguageKey = "language"

// Child node types.
var (
	TitleType = plugin.ChildType(Name, "title")
	CodeType  = plugin.ChildType(Name, "code")
)

var shape = []plugin.ComponentEntry{
	{
		Type:        "title",
		Class:       tree.ClassText,
		Placeholder: "Title",
		Constraints: plugin.Constraints{
			AllowBreak:     plugin.Bool(false),
			AllowSoftBreak: plugin.Bool(false),
		},
	},
	{
		Type:        "code",
		Class:       tree.ClassText,
		Placeholder: "Code",
		Constraints: plugin.Constraints{
			AllowBreak:     plugin.Bool(false),
			AllowSoftBreak: plugin.Bool(true),
		},
	},
}

// New returns a code block node.
func New(language, title, code string) *tree.Element {
	el := tree.NewElement(Name, tree.ClassBlock,
		tree.NewElement(TitleType, tree.ClassText, &tree.Text{Text: title, Placeholder: shape[0].Placeholder}),
		tree.NewElement(CodeType, tree.ClassText, &tree.Text{Text: code, Placeholder: shape[1].Placeholder}),
	)
	if language != "" {
		el.SetProperty(LanguageKey, language)
	}
	return el
}

// Plugin returns the code block plugin definition. language is the default
// language of inserted blocks and may be empty.
func Plugin(language string) plugin.Definition {
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
		Options: map[string]any{LanguageKey: language},
		Actions: []plugin.Action{{
			Title:       "Code block",
			Description: "Insert a code block",
			Hotkey:      "mod+alt+c",
			Tool:        plugin.Tool{Icon: "code", Label: "Code"},
			Handler:     insert,
			Visibility:  visibility,
		}},
	}
}

// insert adds a code block and places the caret in its code. A language
// given as the first argument overrides the plugin option.
func insert(ctx *plugin.Context) (bool, error) {
	language, _ := ctx.Options[LanguageKey].(string)
	if len(ctx.Args) > 0 {
		if s, ok := ctx.Args[0].(string); ok {
			language = s
		}
	}
	if err := blocks.Insert(ctx.Editor, New(language, "", "")); err != nil {
		return false, err
	}
	doc := ctx.Editor.Document()
	cur, ok := blocks.Current(doc)
	if !ok {
		return true, nil
	}
	if start, ok := doc.Start(cur.Path.Child(1)); ok {
		return true, tree.Select(ctx.Editor, tree.Collapsed(start))
	}
	return true, nil
}

func visibility(_, root *tree.Element) plugin.Visibility {
	return plugin.Visibility{
		Visible: true,
		Enabled: root == nil || root.Type != Name,
		Active:  root != nil && root.Type == Name,
	}
}
