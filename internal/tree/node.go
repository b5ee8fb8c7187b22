package tree

import (
	"maps"
	"reflect"
	"strings"
)

// Node is either an *Element or a *Text.
type Node interface {
	// Clone returns a deep copy of the node.
	Clone() Node

	isNode()
}

// Element is a node with an id, a namespaced type and children.
type Element struct {
	// ID is unique within a document and stable across edits.
	ID string

	// Type identifies the owning plugin, e.g. "core/blockquote".
	Type string

	// Class is the taxonomy tag. It changes only through normalization.
	Class Class

	// Properties holds plugin-defined string, number and boolean values.
	Properties map[string]any

	// Children is the ordered child list.
	Children []Node
}

// Decoration is an ephemeral, non-persisted annotation on a text range.
type Decoration struct {
	Kind   string
	Start  int
	End    int
	Detail []string
}

// Text is a leaf node carrying a run of text.
type Text struct {
	Text        string
	Placeholder string

	// Marks holds per-run flags such as "bold" or "italic".
	Marks map[string]any

	// Decorations are added by overlays and never serialized.
	Decorations []Decoration
}

func (*Element) isNode() {}
func (*Text) isNode()    {}

// NewElement creates an element with the given children.
func NewElement(typ string, class Class, children ...Node) *Element {
	return &Element{Type: typ, Class: class, Children: children}
}

// NewText creates a text leaf.
func NewText(s string) *Text {
	return &Text{Text: s}
}

// Clone implements Node.
func (e *Element) Clone() Node {
	out := &Element{
		ID:         e.ID,
		Type:       e.Type,
		Class:      e.Class,
		Properties: maps.Clone(e.Properties),
	}
	if e.Children != nil {
		out.Children = make([]Node, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Clone implements Node. Decorations are not copied.
func (t *Text) Clone() Node {
	return &Text{
		Text:        t.Text,
		Placeholder: t.Placeholder,
		Marks:       maps.Clone(t.Marks),
	}
}

// Property returns a property value.
func (e *Element) Property(key string) (any, bool) {
	v, ok := e.Properties[key]
	return v, ok
}

// SetProperty sets a property value, allocating the map if needed.
func (e *Element) SetProperty(key string, v any) {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[key] = v
}

// IsEmpty reports whether the element contains no text at all.
func (e *Element) IsEmpty() bool {
	return strings.TrimSpace(String(e)) == ""
}

// String returns the concatenated plain text of a node.
func String(n Node) string {
	switch v := n.(type) {
	case *Text:
		return v.Text
	case *Element:
		var b strings.Builder
		for _, c := range v.Children {
			b.WriteString(String(c))
		}
		return b.String()
	}
	return ""
}

// Equal reports whether two nodes are structurally equal, ids included.
// Decorations are ignored. Numeric properties and marks compare by value.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Text:
		y, ok := b.(*Text)
		return ok && x.Text == y.Text && x.Placeholder == y.Placeholder && equalMaps(x.Marks, y.Marks)
	case *Element:
		y, ok := b.(*Element)
		if !ok || x.ID != y.ID || x.Type != y.Type || x.Class != y.Class {
			return false
		}
		if !equalMaps(x.Properties, y.Properties) || len(x.Children) != len(y.Children) {
			return false
		}
		for i := range x.Children {
			if !Equal(x.Children[i], y.Children[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

func equalMaps(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !equalValues(v, w) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && equalMaps(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValues(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
