package tree

// Entry pairs a node with its path.
type Entry struct {
	Node Node
	Path Path
}

// Element returns the entry's node as an element, or nil.
func (e Entry) Element() *Element {
	el, _ := e.Node.(*Element)
	return el
}

// Document is an ordered list of root-level nodes plus the selection.
type Document struct {
	Children  []Node
	Selection *Range
}

// NewDocument creates a document from root-level nodes.
func NewDocument(children ...Node) *Document {
	return &Document{Children: children}
}

// Len returns the number of root-level nodes.
func (d *Document) Len() int {
	return len(d.Children)
}

// Node returns the node at path.
func (d *Document) Node(p Path) (Node, error) {
	if len(p) == 0 {
		return nil, pathErr("node", p, ErrInvalidPath)
	}
	children := d.Children
	var n Node
	for i, idx := range p {
		if idx < 0 || idx >= len(children) {
			return nil, pathErr("node", p, ErrInvalidPath)
		}
		n = children[idx]
		if i == len(p)-1 {
			break
		}
		el, ok := n.(*Element)
		if !ok {
			return nil, pathErr("node", p, ErrInvalidPath)
		}
		children = el.Children
	}
	return n, nil
}

// Element returns the element at path.
func (d *Document) Element(p Path) (*Element, error) {
	n, err := d.Node(p)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, pathErr("element", p, ErrNotElement)
	}
	return el, nil
}

// Text returns the text leaf at path.
func (d *Document) Text(p Path) (*Text, error) {
	n, err := d.Node(p)
	if err != nil {
		return nil, err
	}
	t, ok := n.(*Text)
	if !ok {
		return nil, pathErr("text", p, ErrNotText)
	}
	return t, nil
}

// Has reports whether path addresses a node.
func (d *Document) Has(p Path) bool {
	_, err := d.Node(p)
	return err == nil
}

// childList returns a pointer to the child slice that holds the node at p.
func (d *Document) childList(p Path) (*[]Node, error) {
	if len(p) == 0 {
		return nil, pathErr("children", p, ErrInvalidPath)
	}
	if len(p) == 1 {
		return &d.Children, nil
	}
	parent, err := d.Element(p.Parent())
	if err != nil {
		return nil, err
	}
	return &parent.Children, nil
}

// Above returns the lowest strict ancestor of p that is an element matching
// fn. A nil fn matches any element.
func (d *Document) Above(p Path, fn func(*Element, Path) bool) (Entry, bool) {
	for depth := len(p) - 1; depth >= 1; depth-- {
		ap := p[:depth].Clone()
		el, err := d.Element(ap)
		if err != nil {
			continue
		}
		if fn == nil || fn(el, ap) {
			return Entry{Node: el, Path: ap}, true
		}
	}
	return Entry{}, false
}

// Walk visits every node in document order. Returning false from fn skips
// the node's children.
func (d *Document) Walk(fn func(Entry) bool) {
	for i, c := range d.Children {
		walk(c, Path{i}, fn)
	}
}

// WalkFrom visits the subtree rooted at p in document order.
func (d *Document) WalkFrom(p Path, fn func(Entry) bool) {
	n, err := d.Node(p)
	if err != nil {
		return
	}
	walk(n, p.Clone(), fn)
}

func walk(n Node, p Path, fn func(Entry) bool) {
	if !fn(Entry{Node: n, Path: p}) {
		return
	}
	if el, ok := n.(*Element); ok {
		for i, c := range el.Children {
			walk(c, p.Child(i), fn)
		}
	}
}

// Texts returns every text entry in document order.
func (d *Document) Texts() []Entry {
	var out []Entry
	d.Walk(func(e Entry) bool {
		if _, ok := e.Node.(*Text); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

// textsUnder returns text entries of the subtree at p.
func (d *Document) textsUnder(p Path) []Entry {
	var out []Entry
	d.WalkFrom(p, func(e Entry) bool {
		if _, ok := e.Node.(*Text); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

// FirstText returns the first text leaf under p.
func (d *Document) FirstText(p Path) (Entry, bool) {
	texts := d.textsUnder(p)
	if len(texts) == 0 {
		return Entry{}, false
	}
	return texts[0], true
}

// LastText returns the last text leaf under p.
func (d *Document) LastText(p Path) (Entry, bool) {
	texts := d.textsUnder(p)
	if len(texts) == 0 {
		return Entry{}, false
	}
	return texts[len(texts)-1], true
}

// Start returns the first point inside the node at p.
func (d *Document) Start(p Path) (Point, bool) {
	e, ok := d.FirstText(p)
	if !ok {
		return Point{}, false
	}
	return Point{Path: e.Path, Offset: 0}, true
}

// End returns the last point inside the node at p.
func (d *Document) End(p Path) (Point, bool) {
	e, ok := d.LastText(p)
	if !ok {
		return Point{}, false
	}
	return Point{Path: e.Path, Offset: len(e.Node.(*Text).Text)}, true
}

// PreviousText returns the text leaf before p in document order.
func (d *Document) PreviousText(p Path) (Entry, bool) {
	var prev Entry
	found := false
	for _, e := range d.Texts() {
		if e.Path.Equal(p) {
			return prev, found
		}
		prev, found = e, true
	}
	return Entry{}, false
}

// NextText returns the text leaf after p in document order.
func (d *Document) NextText(p Path) (Entry, bool) {
	seen := false
	for _, e := range d.Texts() {
		if seen {
			return e, true
		}
		if e.Path.Equal(p) {
			seen = true
		}
	}
	return Entry{}, false
}

// Roots returns the root-level element entries.
func (d *Document) Roots() []Entry {
	out := make([]Entry, 0, len(d.Children))
	for i, c := range d.Children {
		if _, ok := c.(*Element); ok {
			out = append(out, Entry{Node: c, Path: Path{i}})
		}
	}
	return out
}

// IndexOf returns the root-level index of the element with id, or -1.
func (d *Document) IndexOf(id string) int {
	for i, c := range d.Children {
		if el, ok := c.(*Element); ok && el.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the entry of the element with id anywhere in the document.
func (d *Document) Find(id string) (Entry, bool) {
	var out Entry
	found := false
	d.Walk(func(e Entry) bool {
		if found {
			return false
		}
		if el, ok := e.Node.(*Element); ok && el.ID == id {
			out, found = e, true
			return false
		}
		return true
	})
	return out, found
}

// Nodes returns deep copies of the root-level nodes.
func (d *Document) Nodes() []Node {
	out := make([]Node, len(d.Children))
	for i, c := range d.Children {
		out[i] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of the document, selection included.
func (d *Document) Clone() *Document {
	out := &Document{Children: d.Nodes()}
	if d.Selection != nil {
		sel := d.Selection.Clone()
		out.Selection = &sel
	}
	return out
}
