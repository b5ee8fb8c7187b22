package tree

import "github.com/google/uuid"

// NewID returns a fresh element id. Ids are random and never reused.
func NewID() string {
	return uuid.NewString()
}

// ids returns the set of element ids present in the document.
func (d *Document) ids() map[string]struct{} {
	set := make(map[string]struct{})
	d.Walk(func(e Entry) bool {
		if el, ok := e.Node.(*Element); ok && el.ID != "" {
			set[el.ID] = struct{}{}
		}
		return true
	})
	return set
}

// assignIDs gives every element in n an id that is not yet taken.
func assignIDs(n Node, taken map[string]struct{}, gen func() string) {
	el, ok := n.(*Element)
	if !ok {
		return
	}
	if _, dup := taken[el.ID]; el.ID == "" || dup {
		el.ID = gen()
	}
	taken[el.ID] = struct{}{}
	for _, c := range el.Children {
		assignIDs(c, taken, gen)
	}
}
