package tree

import (
	"fmt"
	"maps"
	"slices"
)

// OpKind identifies an operation.
type OpKind string

// Operation kinds.
const (
	OpInsertNode   OpKind = "insert_node"
	OpRemoveNode   OpKind = "remove_node"
	OpInsertText   OpKind = "insert_text"
	OpRemoveText   OpKind = "remove_text"
	OpSplitNode    OpKind = "split_node"
	OpMergeNode    OpKind = "merge_node"
	OpSetNode      OpKind = "set_node"
	OpSetSelection OpKind = "set_selection"
)

// Operation is an atomic edit of a Document.
type Operation struct {
	Kind OpKind
	Path Path

	// Node is the inserted or removed node.
	Node Node

	// Offset and Text describe insert_text and remove_text.
	Offset int
	Text   string

	// Position is the split point for split_node: a byte offset for text,
	// a child index for elements.
	Position int

	// Properties are merged by set_node (a nil value deletes the key). For
	// split_node, the "id" entry names the new element.
	Properties map[string]any

	// Type and Class retype an element in set_node when set.
	Type  string
	Class *Class

	// Selection is the new selection for set_selection; nil deselects.
	Selection *Range
}

// IsSelectionOnly reports whether the operation only moves the selection.
func (op Operation) IsSelectionOnly() bool {
	return op.Kind == OpSetSelection
}

// String returns a short debugging representation.
func (op Operation) String() string {
	switch op.Kind {
	case OpInsertText, OpRemoveText:
		return fmt.Sprintf("%s %v@%d %q", op.Kind, op.Path, op.Offset, op.Text)
	case OpSplitNode:
		return fmt.Sprintf("%s %v@%d", op.Kind, op.Path, op.Position)
	}
	return fmt.Sprintf("%s %v", op.Kind, op.Path)
}

// Apply performs op on doc in place and keeps the selection consistent.
func Apply(doc *Document, op Operation) error {
	var sel *Range
	if doc.Selection != nil && op.Kind != OpSetSelection {
		s := doc.Selection.Clone()
		sel = &s
	}

	var relocate func(Point) (Point, bool)
	var err error
	switch op.Kind {
	case OpInsertNode:
		relocate, err = applyInsertNode(doc, op)
	case OpRemoveNode:
		relocate, err = applyRemoveNode(doc, op)
	case OpInsertText:
		relocate, err = applyInsertText(doc, op)
	case OpRemoveText:
		relocate, err = applyRemoveText(doc, op)
	case OpSplitNode:
		relocate, err = applySplitNode(doc, op)
	case OpMergeNode:
		relocate, err = applyMergeNode(doc, op)
	case OpSetNode:
		err = applySetNode(doc, op)
	case OpSetSelection:
		if op.Selection == nil {
			doc.Selection = nil
		} else {
			s := op.Selection.Clone()
			doc.Selection = &s
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Kind)
	}
	if err != nil {
		return err
	}

	if sel != nil && relocate != nil {
		anchor, okA := relocate(sel.Anchor)
		focus, okF := relocate(sel.Focus)
		if okA && okF {
			doc.Selection = &Range{Anchor: anchor, Focus: focus}
		} else {
			doc.Selection = nil
		}
	}
	return nil
}

func applyInsertNode(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	list, err := doc.childList(op.Path)
	if err != nil {
		return nil, err
	}
	idx := op.Path.Last()
	if idx < 0 || idx > len(*list) {
		return nil, pathErr(string(op.Kind), op.Path, ErrInvalidPath)
	}
	*list = slices.Insert(*list, idx, op.Node.Clone())
	return func(p Point) (Point, bool) {
		return Point{Path: p.Path.transformInsert(op.Path), Offset: p.Offset}, true
	}, nil
}

func applyRemoveNode(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	list, err := doc.childList(op.Path)
	if err != nil {
		return nil, err
	}
	idx := op.Path.Last()
	if idx < 0 || idx >= len(*list) {
		return nil, pathErr(string(op.Kind), op.Path, ErrInvalidPath)
	}

	// Points inside the removed node fall back to the closest text outside it.
	var fallback *Point
	if prev, ok := doc.previousTextOutside(op.Path); ok {
		fallback = &Point{Path: prev.Path, Offset: len(prev.Node.(*Text).Text)}
	} else if next, ok := doc.nextTextOutside(op.Path); ok {
		fallback = &Point{Path: next.Path, Offset: 0}
	}

	*list = slices.Delete(*list, idx, idx+1)
	return func(p Point) (Point, bool) {
		np, ok := p.Path.transformRemove(op.Path)
		if ok {
			return Point{Path: np, Offset: p.Offset}, true
		}
		if fallback == nil {
			return Point{}, false
		}
		fp, ok := fallback.Path.transformRemove(op.Path)
		return Point{Path: fp, Offset: fallback.Offset}, ok
	}, nil
}

func (d *Document) previousTextOutside(p Path) (Entry, bool) {
	var prev Entry
	found := false
	for _, e := range d.Texts() {
		if e.Path.Compare(p) >= 0 {
			break
		}
		prev, found = e, true
	}
	return prev, found
}

func (d *Document) nextTextOutside(p Path) (Entry, bool) {
	for _, e := range d.Texts() {
		if p.Equal(e.Path) || p.IsAncestorOf(e.Path) {
			continue
		}
		if e.Path.Compare(p) > 0 {
			return e, true
		}
	}
	return Entry{}, false
}

func applyInsertText(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	t, err := doc.Text(op.Path)
	if err != nil {
		return nil, err
	}
	if op.Offset < 0 || op.Offset > len(t.Text) {
		return nil, pathErr(string(op.Kind), op.Path, ErrOffsetOutOfRange)
	}
	t.Text = t.Text[:op.Offset] + op.Text + t.Text[op.Offset:]
	return func(p Point) (Point, bool) {
		if p.Path.Equal(op.Path) && p.Offset >= op.Offset {
			p.Offset += len(op.Text)
		}
		return p, true
	}, nil
}

func applyRemoveText(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	t, err := doc.Text(op.Path)
	if err != nil {
		return nil, err
	}
	end := op.Offset + len(op.Text)
	if op.Offset < 0 || end > len(t.Text) {
		return nil, pathErr(string(op.Kind), op.Path, ErrOffsetOutOfRange)
	}
	t.Text = t.Text[:op.Offset] + t.Text[end:]
	return func(p Point) (Point, bool) {
		if p.Path.Equal(op.Path) && p.Offset > op.Offset {
			p.Offset = max(op.Offset, p.Offset-len(op.Text))
		}
		return p, true
	}, nil
}

func applySplitNode(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	list, err := doc.childList(op.Path)
	if err != nil {
		return nil, err
	}
	n, err := doc.Node(op.Path)
	if err != nil {
		return nil, err
	}

	var right Node
	switch v := n.(type) {
	case *Text:
		if op.Position < 0 || op.Position > len(v.Text) {
			return nil, pathErr(string(op.Kind), op.Path, ErrOffsetOutOfRange)
		}
		right = &Text{Text: v.Text[op.Position:], Marks: maps.Clone(v.Marks)}
		v.Text = v.Text[:op.Position]
	case *Element:
		if op.Position < 0 || op.Position > len(v.Children) {
			return nil, pathErr(string(op.Kind), op.Path, ErrOffsetOutOfRange)
		}
		id, _ := op.Properties["id"].(string)
		tail := slices.Clone(v.Children[op.Position:])
		v.Children = slices.Clone(v.Children[:op.Position])
		right = &Element{
			ID:         id,
			Type:       v.Type,
			Class:      v.Class,
			Properties: maps.Clone(v.Properties),
			Children:   tail,
		}
	}
	idx := op.Path.Last()
	*list = slices.Insert(*list, idx+1, right)

	depth := len(op.Path)
	next := op.Path.Next()
	return func(p Point) (Point, bool) {
		if p.Path.Equal(op.Path) {
			if _, isText := n.(*Text); isText && p.Offset >= op.Position {
				return Point{Path: next, Offset: p.Offset - op.Position}, true
			}
			return p, true
		}
		if op.Path.IsAncestorOf(p.Path) {
			if p.Path[depth] >= op.Position {
				np := p.Path.Clone()
				np[depth-1]++
				np[depth] -= op.Position
				return Point{Path: np, Offset: p.Offset}, true
			}
			return p, true
		}
		return Point{Path: p.Path.transformInsert(next), Offset: p.Offset}, true
	}, nil
}

func applyMergeNode(doc *Document, op Operation) (func(Point) (Point, bool), error) {
	prevPath, ok := op.Path.Previous()
	if !ok {
		return nil, pathErr(string(op.Kind), op.Path, ErrInvalidPath)
	}
	n, err := doc.Node(op.Path)
	if err != nil {
		return nil, err
	}
	prev, err := doc.Node(prevPath)
	if err != nil {
		return nil, err
	}

	var joint int
	switch v := n.(type) {
	case *Text:
		pt, ok := prev.(*Text)
		if !ok {
			return nil, pathErr(string(op.Kind), op.Path, ErrMergeMismatch)
		}
		joint = len(pt.Text)
		pt.Text += v.Text
	case *Element:
		pe, ok := prev.(*Element)
		if !ok {
			return nil, pathErr(string(op.Kind), op.Path, ErrMergeMismatch)
		}
		joint = len(pe.Children)
		pe.Children = append(pe.Children, v.Children...)
	}

	list, err := doc.childList(op.Path)
	if err != nil {
		return nil, err
	}
	idx := op.Path.Last()
	*list = slices.Delete(*list, idx, idx+1)

	depth := len(op.Path)
	return func(p Point) (Point, bool) {
		if p.Path.Equal(op.Path) {
			if _, isText := n.(*Text); isText {
				return Point{Path: prevPath.Clone(), Offset: p.Offset + joint}, true
			}
		}
		if op.Path.IsAncestorOf(p.Path) || p.Path.Equal(op.Path) {
			np := p.Path.Clone()
			np[depth-1]--
			if len(np) > depth {
				np[depth] += joint
			}
			return Point{Path: np, Offset: p.Offset}, true
		}
		np, _ := p.Path.transformRemove(op.Path)
		return Point{Path: np, Offset: p.Offset}, true
	}, nil
}

func applySetNode(doc *Document, op Operation) error {
	el, err := doc.Element(op.Path)
	if err != nil {
		return err
	}
	for k, v := range op.Properties {
		if v == nil {
			delete(el.Properties, k)
			continue
		}
		el.SetProperty(k, v)
	}
	if op.Type != "" {
		el.Type = op.Type
	}
	if op.Class != nil {
		el.Class = *op.Class
	}
	return nil
}
