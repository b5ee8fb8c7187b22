package tree

import "slices"

// Path addresses a node by the child index at each depth.
type Path []int

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}

// Compare returns -1, 0 or 1 in document order. An ancestor compares equal
// to its descendants.
func (p Path) Compare(o Path) int {
	n := min(len(p), len(o))
	for i := 0; i < n; i++ {
		if p[i] < o[i] {
			return -1
		}
		if p[i] > o[i] {
			return 1
		}
	}
	return 0
}

// Parent returns the parent path. The parent of a root-level path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Last returns the index within the parent.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns the path of the i-th child.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Next returns the path of the following sibling.
func (p Path) Next() Path {
	out := p.Clone()
	out[len(out)-1]++
	return out
}

// Previous returns the path of the preceding sibling. ok is false at index 0.
func (p Path) Previous() (Path, bool) {
	if len(p) == 0 || p[len(p)-1] == 0 {
		return nil, false
	}
	out := p.Clone()
	out[len(out)-1]--
	return out, true
}

// IsAncestorOf reports whether p is a strict ancestor of o.
func (p Path) IsAncestorOf(o Path) bool {
	return len(p) < len(o) && slices.Equal(p, o[:len(p)])
}

// Root returns the root-level path containing p.
func (p Path) Root() Path {
	if len(p) == 0 {
		return nil
	}
	return Path{p[0]}
}

// transformInsert adjusts p for a node inserted at at.
func (p Path) transformInsert(at Path) Path {
	if len(at) == 0 || len(p) < len(at) {
		return p
	}
	if !at.Parent().Equal(p[:len(at)-1]) {
		return p
	}
	if p[len(at)-1] >= at.Last() {
		p = p.Clone()
		p[len(at)-1]++
	}
	return p
}

// transformRemove adjusts p for the node at at being removed. ok is false
// when p is the removed node or inside it.
func (p Path) transformRemove(at Path) (Path, bool) {
	if len(at) == 0 || len(p) < len(at) {
		return p, true
	}
	if p[:len(at)].Equal(at) {
		return nil, false
	}
	if at.Parent().Equal(p[:len(at)-1]) && p[len(at)-1] > at.Last() {
		p = p.Clone()
		p[len(at)-1]--
	}
	return p, true
}
