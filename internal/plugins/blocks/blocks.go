// Package blocks holds the editing helpers shared by the built-in plugins.
package blocks

import (
	"strings"

	"github.com/dshills/inkwell/internal/tree"
)

// Current returns the root-level element holding the selection anchor.
func Current(doc *tree.Document) (tree.Entry, bool) {
	if doc.Selection == nil || len(doc.Selection.Anchor.Path) == 0 {
		return tree.Entry{}, false
	}
	p := tree.Path{doc.Selection.Anchor.Path[0]}
	el, err := doc.Element(p)
	if err != nil {
		return tree.Entry{}, false
	}
	return tree.Entry{Node: el, Path: p}, true
}

// Insert adds el as a root-level node after the block holding the
// selection, or at the end of the document without one. An empty textblock
// at the selection is replaced instead. The caret moves to the start of the
// new node.
func Insert(ed tree.Editor, el *tree.Element) error {
	doc := ed.Document()
	at := tree.Path{len(doc.Children)}
	var replace tree.Path
	if cur, ok := Current(doc); ok {
		at = cur.Path.Next()
		if c := cur.Element(); c.Class == tree.ClassTextblock && tree.String(c) == "" {
			replace = cur.Path
		}
	}
	if err := tree.InsertNodes(ed, at, el); err != nil {
		return err
	}
	if replace != nil {
		if err := tree.RemoveNodes(ed, replace); err != nil {
			return err
		}
		at = replace
	}
	if start, ok := ed.Document().Start(at); ok {
		return tree.Select(ed, tree.Collapsed(start))
	}
	return nil
}

// Convert retypes the root-level element at path, replacing its properties
// with props.
func Convert(ed tree.Editor, at tree.Path, typ string, class tree.Class, props map[string]any) error {
	el, err := ed.Document().Element(at)
	if err != nil {
		return err
	}
	set := make(map[string]any, len(el.Properties)+len(props))
	for k := range el.Properties {
		set[k] = nil
	}
	for k, v := range props {
		set[k] = v
	}
	if len(set) > 0 {
		if err := tree.SetNodes(ed, at, set); err != nil {
			return err
		}
	}
	return tree.Retype(ed, at, typ, class)
}

// Prefix returns the text between the start of the current root-level
// textblock and a collapsed caret in its first text leaf.
func Prefix(doc *tree.Document) (tree.Entry, string, bool) {
	cur, ok := Current(doc)
	if !ok || !doc.Selection.IsCollapsed() {
		return tree.Entry{}, "", false
	}
	first, ok := doc.FirstText(cur.Path)
	if !ok || !first.Path.Equal(doc.Selection.Anchor.Path) {
		return tree.Entry{}, "", false
	}
	txt := first.Node.(*tree.Text)
	off := doc.Selection.Anchor.Offset
	if off > len(txt.Text) {
		return tree.Entry{}, "", false
	}
	return cur, txt.Text[:off], true
}

// TrimPrefix removes the first n bytes of the current root's first text.
func TrimPrefix(ed tree.Editor, root tree.Path, n int) error {
	first, ok := ed.Document().FirstText(root)
	if !ok {
		return nil
	}
	txt := first.Node.(*tree.Text)
	if n > len(txt.Text) {
		n = len(txt.Text)
	}
	return ed.Apply(tree.Operation{Kind: tree.OpRemoveText, Path: first.Path, Offset: 0, Text: txt.Text[:n]})
}

// Level reads an integer property that may have been decoded from JSON.
func Level(el *tree.Element, key string) (int, bool) {
	v, ok := el.Property(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// IsTextblock reports whether el is a root-level textblock that can be
// converted between paragraph-like types.
func IsTextblock(el *tree.Element) bool {
	return el != nil && el.Class == tree.ClassTextblock
}

// HasType reports whether el's type is typ or a child type of typ.
func HasType(el *tree.Element, typ string) bool {
	return el != nil && (el.Type == typ || strings.HasPrefix(el.Type, typ+"/"))
}
