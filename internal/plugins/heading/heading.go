// Package heading provides leveled heading textblocks and the "#" input
// shortcut.
package heading

import (
	"fmt"
	"strings"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the heading node type.
const Name = "core/heading"

// LevelKey is the heading level property.
const LevelKey = "level"

// MaxLevel is the deepest heading level.
const MaxLevel = 3

// New returns a heading node.
func New(level int, text string) *tree.Element {
	el := tree.NewElement(Name, tree.ClassTextblock, tree.NewText(text))
	el.SetProperty(LevelKey, level)
	return el
}

// Plugin returns the heading plugin definition.
func Plugin() plugin.Definition {
	actions := make([]plugin.Action, 0, MaxLevel)
	for level := 1; level <= MaxLevel; level++ {
		actions = append(actions, plugin.Action{
			Title:       fmt.Sprintf("Heading %d", level),
			Description: fmt.Sprintf("Turn the current block into a level %d heading", level),
			Hotkey:      fmt.Sprintf("mod+alt+%d", level),
			Tool:        plugin.Tool{Icon: fmt.Sprintf("h%d", level), Label: fmt.Sprintf("H%d", level)},
			Handler:     toggle(level),
			Visibility:  visibility(level),
		})
	}
	return plugin.Definition{
		Name:  Name,
		Class: tree.ClassTextblock,
		Component: plugin.ComponentEntry{
			Placeholder: "Heading",
			Constraints: plugin.Constraints{NormalizeNode: normalizeLevel},
		},
		Events: plugin.Events{
			OnInsertText: shortcut,
		},
		Actions: actions,
	}
}

// Level returns the heading level of el, clamped to [1, MaxLevel].
func Level(el *tree.Element) int {
	n, ok := blocks.Level(el, LevelKey)
	if !ok || n < 1 {
		return 1
	}
	return min(n, MaxLevel)
}

// toggle converts the current textblock to a heading of level, or back to a
// paragraph when it already is one.
func toggle(level int) plugin.HandlerFunc {
	return func(ctx *plugin.Context) (bool, error) {
		cur, ok := blocks.Current(ctx.Editor.Document())
		if !ok {
			return true, blocks.Insert(ctx.Editor, New(level, ""))
		}
		el := cur.Element()
		if !blocks.IsTextblock(el) {
			return false, nil
		}
		if el.Type == Name && Level(el) == level {
			return true, blocks.Convert(ctx.Editor, cur.Path, paragraph.Name, tree.ClassTextblock, nil)
		}
		return true, blocks.Convert(ctx.Editor, cur.Path, Name, tree.ClassTextblock, map[string]any{LevelKey: level})
	}
}

func visibility(level int) plugin.VisibilityFunc {
	return func(_, root *tree.Element) plugin.Visibility {
		return plugin.Visibility{
			Visible: true,
			Enabled: root == nil || blocks.IsTextblock(root),
			Active:  root != nil && root.Type == Name && Level(root) == level,
		}
	}
}

// normalizeLevel stores a valid integer level on every heading.
func normalizeLevel(ed tree.Editor, entry tree.Entry) (bool, error) {
	el := entry.Element()
	if n, ok := blocks.Level(el, LevelKey); ok && n >= 1 && n <= MaxLevel {
		if _, isInt := el.Properties[LevelKey].(int); isInt {
			return false, nil
		}
	}
	return true, tree.SetNodes(ed, entry.Path, map[string]any{LevelKey: Level(el)})
}

// shortcut turns "#", "##" or "###" followed by a space at the start of a
// paragraph into a heading.
func shortcut(ed tree.Editor, text string, next func() error) error {
	if text != " " {
		return next()
	}
	cur, prefix, ok := blocks.Prefix(ed.Document())
	if !ok || cur.Element().Type != paragraph.Name {
		return next()
	}
	level := len(prefix)
	if level < 1 || level > MaxLevel || strings.Trim(prefix, "#") != "" {
		return next()
	}
	if err := blocks.TrimPrefix(ed, cur.Path, level); err != nil {
		return err
	}
	return blocks.Convert(ed, cur.Path, Name, tree.ClassTextblock, map[string]any{LevelKey: level})
}
