package tree

import "maps"

// Editor is the surface transforms use to change a document. The editing
// session implements it so that every operation is observed.
type Editor interface {
	Document() *Document
	Apply(op Operation) error
	NewID() string
}

// InsertNodes inserts nodes starting at path at. Elements without an id, or
// whose id is already in the document, receive a fresh one.
func InsertNodes(ed Editor, at Path, nodes ...Node) error {
	taken := ed.Document().ids()
	p := at.Clone()
	for _, n := range nodes {
		n = n.Clone()
		assignIDs(n, taken, ed.NewID)
		if err := ed.Apply(Operation{Kind: OpInsertNode, Path: p, Node: n}); err != nil {
			return err
		}
		p = p.Next()
	}
	return nil
}

// RemoveNodes removes the node at path at.
func RemoveNodes(ed Editor, at Path) error {
	n, err := ed.Document().Node(at)
	if err != nil {
		return err
	}
	return ed.Apply(Operation{Kind: OpRemoveNode, Path: at.Clone(), Node: n.Clone()})
}

// SetNodes merges props into the element at path at. A nil value deletes.
func SetNodes(ed Editor, at Path, props map[string]any) error {
	return ed.Apply(Operation{Kind: OpSetNode, Path: at.Clone(), Properties: maps.Clone(props)})
}

// Retype changes the type and class of the element at path at.
func Retype(ed Editor, at Path, typ string, class Class) error {
	return ed.Apply(Operation{Kind: OpSetNode, Path: at.Clone(), Type: typ, Class: &class})
}

// Select sets the selection.
func Select(ed Editor, r Range) error {
	r = r.Clone()
	return ed.Apply(Operation{Kind: OpSetSelection, Selection: &r})
}

// Deselect clears the selection.
func Deselect(ed Editor) error {
	return ed.Apply(Operation{Kind: OpSetSelection})
}

// MoveNode moves the node at from to path to, where to is interpreted after
// the node has been removed. Element ids are preserved and a selection inside
// the moved node follows it.
func MoveNode(ed Editor, from, to Path) error {
	doc := ed.Document()
	n, err := doc.Node(from)
	if err != nil {
		return err
	}
	var restore *Range
	if sel := doc.Selection; sel != nil {
		anchor, okA := rebase(sel.Anchor, from, to)
		focus, okF := rebase(sel.Focus, from, to)
		if okA || okF {
			if !okA {
				anchor = relocateAfterMove(sel.Anchor, from, to)
			}
			if !okF {
				focus = relocateAfterMove(sel.Focus, from, to)
			}
			restore = &Range{Anchor: anchor, Focus: focus}
		}
	}
	if err := ed.Apply(Operation{Kind: OpRemoveNode, Path: from.Clone(), Node: n.Clone()}); err != nil {
		return err
	}
	if err := ed.Apply(Operation{Kind: OpInsertNode, Path: to.Clone(), Node: n.Clone()}); err != nil {
		return err
	}
	if restore != nil {
		return Select(ed, *restore)
	}
	return nil
}

// rebase maps a point inside from onto the same position under to.
func rebase(p Point, from, to Path) (Point, bool) {
	if !from.Equal(p.Path) && !from.IsAncestorOf(p.Path) {
		return p, false
	}
	np := append(to.Clone(), p.Path[len(from):]...)
	return Point{Path: np, Offset: p.Offset}, true
}

// relocateAfterMove maps a point outside the moved node.
func relocateAfterMove(p Point, from, to Path) Point {
	np, _ := p.Path.transformRemove(from)
	return Point{Path: np.transformInsert(to), Offset: p.Offset}
}

// UnwrapNodes replaces the element at path at with its children.
func UnwrapNodes(ed Editor, at Path) error {
	el, err := ed.Document().Element(at)
	if err != nil {
		return err
	}
	count := len(el.Children)
	parent := at.Parent()
	for i := 0; i < count; i++ {
		// The element sits at at+i after i children have been lifted
		// before it; its first child is always index 0.
		holder := append(parent.Clone(), at.Last()+i)
		if err := MoveNode(ed, holder.Child(0), append(parent.Clone(), at.Last()+i)); err != nil {
			return err
		}
	}
	return RemoveNodes(ed, append(parent.Clone(), at.Last()+count))
}

// WrapNodes wraps the children [from, to) of the element at parent (the
// document root when parent is empty) in wrapper.
func WrapNodes(ed Editor, parent Path, from, to int, wrapper *Element) error {
	w := wrapper.Clone().(*Element)
	w.Children = nil
	if err := InsertNodes(ed, append(parent.Clone(), from), w); err != nil {
		return err
	}
	holder := append(parent.Clone(), from)
	for i := 0; i < to-from; i++ {
		// Wrapped siblings shift down by one as each is moved in.
		if err := MoveNode(ed, append(parent.Clone(), from+1), holder.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

// LiftNode moves the node at path at out of its parent, placing it directly
// after the parent.
func LiftNode(ed Editor, at Path) error {
	parent := at.Parent()
	if len(parent) == 0 {
		return pathErr("lift", at, ErrInvalidPath)
	}
	return MoveNode(ed, at, parent.Next())
}

// InsertText inserts s at the selection, replacing an expanded selection.
func InsertText(ed Editor, s string) error {
	doc := ed.Document()
	if doc.Selection == nil {
		return ErrNoSelection
	}
	if !doc.Selection.IsCollapsed() {
		if err := DeleteRange(ed, *doc.Selection); err != nil {
			return err
		}
	}
	if doc.Selection == nil {
		return ErrNoSelection
	}
	at := doc.Selection.Anchor
	return ed.Apply(Operation{Kind: OpInsertText, Path: at.Path.Clone(), Offset: at.Offset, Text: s})
}

// Block returns the lowest non-inline element containing path p.
func (d *Document) Block(p Path) (Entry, bool) {
	return d.Above(p, func(el *Element, _ Path) bool {
		return el.Class != ClassInline
	})
}

// SplitBlock splits the text at the selection and every ancestor up to and
// including the enclosing block. It is the default line break.
func SplitBlock(ed Editor) error {
	doc := ed.Document()
	if doc.Selection == nil {
		return ErrNoSelection
	}
	if !doc.Selection.IsCollapsed() {
		if err := DeleteRange(ed, *doc.Selection); err != nil {
			return err
		}
	}
	at := doc.Selection.Anchor
	block, ok := doc.Block(at.Path)
	if !ok {
		return ed.Apply(Operation{Kind: OpSplitNode, Path: at.Path.Clone(), Position: at.Offset})
	}
	if err := ed.Apply(Operation{Kind: OpSplitNode, Path: at.Path.Clone(), Position: at.Offset}); err != nil {
		return err
	}
	position := at.Path.Last() + 1
	for depth := len(at.Path) - 1; depth >= len(block.Path); depth-- {
		p := at.Path[:depth].Clone()
		op := Operation{
			Kind:       OpSplitNode,
			Path:       p,
			Position:   position,
			Properties: map[string]any{"id": ed.NewID()},
		}
		if err := ed.Apply(op); err != nil {
			return err
		}
		position = p.Last() + 1
	}
	return nil
}

// InsertSoftBreak inserts a newline inside the current text.
func InsertSoftBreak(ed Editor) error {
	return InsertText(ed, "\n")
}
