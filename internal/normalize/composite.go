package normalize

import (
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

// Demotion names the type and class that excess composite children are
// converted to when they are lifted out.
type Demotion struct {
	Type  string
	Class tree.Class
}

// Composite returns a NormalizeFunc enforcing a fixed child shape: one child
// per entry in shape, in order. Child node types are qualified by the
// composite's own type, so a "body" entry under "core/blockquote" expects
// "core/blockquote/body".
//
// Corrections, in priority order, at most one per call:
//  1. remove the composite when none of its slot children exist and it holds
//     no meaningful text
//  2. insert the first missing slot child at its own position when there
//     are too few children; untyped content fills slots from the front, so
//     a composite without any slot child is filled from the tail
//  3. unwrap a child whose class is block or textblock
//  4. retype a child that has the wrong type for its position
//  5. demote the last excess child and lift it out after the composite
func Composite(shape []plugin.ComponentEntry, demote Demotion) plugin.NormalizeFunc {
	return func(ed tree.Editor, entry tree.Entry) (bool, error) {
		el := entry.Element()
		if el == nil || len(shape) == 0 {
			return false, nil
		}
		types := make([]string, len(shape))
		for i, s := range shape {
			types[i] = plugin.ChildType(el.Type, s.Type)
		}

		if !hasSlotChild(el, types) && el.IsEmpty() {
			return true, tree.RemoveNodes(ed, entry.Path)
		}

		if n := len(el.Children); n < len(shape) {
			i := missingSlot(el, types)
			return true, tree.InsertNodes(ed, entry.Path.Child(i), emptySlot(types[i], shape[i]))
		}

		for i, c := range el.Children {
			child, ok := c.(*tree.Element)
			if !ok {
				// A bare text leaf takes the slot it occupies.
				return true, wrapText(ed, entry.Path.Child(i), slotAt(types, shape, i))
			}
			if child.Class.IsHeavy() {
				return true, unwrapHeavy(ed, entry.Path.Child(i), child, slotAt(types, shape, i))
			}
		}

		for i, c := range el.Children {
			if i >= len(shape) {
				break
			}
			child := c.(*tree.Element)
			if child.Type != types[i] || child.Class != shape[i].Class {
				return true, tree.Retype(ed, entry.Path.Child(i), types[i], shape[i].Class)
			}
		}

		if last := len(el.Children) - 1; last >= len(shape) {
			return true, demoteChild(ed, entry.Path.Child(last), el.Children[last].(*tree.Element), demote)
		}
		return false, nil
	}
}

type slot struct {
	typ   string
	class tree.Class
}

func slotAt(types []string, shape []plugin.ComponentEntry, i int) slot {
	if i >= len(shape) {
		i = len(shape) - 1
	}
	return slot{typ: types[i], class: shape[i].Class}
}

func hasSlotChild(el *tree.Element, types []string) bool {
	for _, c := range el.Children {
		child, ok := c.(*tree.Element)
		if !ok {
			continue
		}
		for _, t := range types {
			if child.Type == t {
				return true
			}
		}
	}
	return false
}

// missingSlot returns the index of the first slot whose type no child has.
// It returns the child count when no child carries a slot type.
func missingSlot(el *tree.Element, types []string) int {
	n := len(el.Children)
	if !hasSlotChild(el, types) {
		return n
	}
	for i, t := range types {
		if !hasChildType(el, t) {
			return min(i, n)
		}
	}
	return n
}

func hasChildType(el *tree.Element, typ string) bool {
	for _, c := range el.Children {
		if child, ok := c.(*tree.Element); ok && child.Type == typ {
			return true
		}
	}
	return false
}

func emptySlot(typ string, entry plugin.ComponentEntry) *tree.Element {
	return &tree.Element{
		Type:     typ,
		Class:    entry.Class,
		Children: []tree.Node{&tree.Text{Placeholder: entry.Placeholder}},
	}
}

// wrapText moves a bare text leaf into a new slot element.
func wrapText(ed tree.Editor, at tree.Path, s slot) error {
	return tree.WrapNodes(ed, at.Parent(), at.Last(), at.Last()+1, &tree.Element{Type: s.typ, Class: s.class})
}

// unwrapHeavy splices the children of a structural child into the parent.
// A heavy child that only holds text is adopted as the slot it occupies.
func unwrapHeavy(ed tree.Editor, at tree.Path, child *tree.Element, s slot) error {
	for _, c := range child.Children {
		if _, ok := c.(*tree.Element); ok {
			return tree.UnwrapNodes(ed, at)
		}
	}
	if err := clearProperties(ed, at, child); err != nil {
		return err
	}
	return tree.Retype(ed, at, s.typ, s.class)
}

func demoteChild(ed tree.Editor, at tree.Path, child *tree.Element, demote Demotion) error {
	if err := clearProperties(ed, at, child); err != nil {
		return err
	}
	if err := tree.Retype(ed, at, demote.Type, demote.Class); err != nil {
		return err
	}
	return tree.LiftNode(ed, at)
}

func clearProperties(ed tree.Editor, at tree.Path, el *tree.Element) error {
	if len(el.Properties) == 0 {
		return nil
	}
	props := make(map[string]any, len(el.Properties))
	for k := range el.Properties {
		props[k] = nil
	}
	return tree.SetNodes(ed, at, props)
}

// Repeated returns a NormalizeFunc for a container whose children are all of
// one item type, such as a list. An empty container is removed; any other
// child is adopted as an item.
func Repeated(item plugin.ComponentEntry) plugin.NormalizeFunc {
	return func(ed tree.Editor, entry tree.Entry) (bool, error) {
		el := entry.Element()
		if el == nil {
			return false, nil
		}
		typ := plugin.ChildType(el.Type, item.Type)
		s := slot{typ: typ, class: item.Class}

		if len(el.Children) == 0 || (!hasSlotChild(el, []string{typ}) && el.IsEmpty()) {
			return true, tree.RemoveNodes(ed, entry.Path)
		}
		for i, c := range el.Children {
			child, ok := c.(*tree.Element)
			if !ok {
				return true, wrapText(ed, entry.Path.Child(i), s)
			}
			if child.Type == typ && child.Class == item.Class {
				continue
			}
			if child.Class.IsHeavy() {
				return true, unwrapHeavy(ed, entry.Path.Child(i), child, s)
			}
			return true, tree.Retype(ed, entry.Path.Child(i), typ, item.Class)
		}
		return false, nil
	}
}
