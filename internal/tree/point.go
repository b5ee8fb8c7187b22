package tree

import "fmt"

// Point is a position inside a text leaf.
type Point struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

// String returns a debugging representation.
func (p Point) String() string {
	return fmt.Sprintf("%v:%d", p.Path, p.Offset)
}

// Compare orders two points in the document.
func (p Point) Compare(o Point) int {
	if c := p.Path.Compare(o.Path); c != 0 {
		return c
	}
	if len(p.Path) != len(o.Path) {
		return 0
	}
	switch {
	case p.Offset < o.Offset:
		return -1
	case p.Offset > o.Offset:
		return 1
	}
	return 0
}

// Equal reports whether two points are identical.
func (p Point) Equal(o Point) bool {
	return p.Offset == o.Offset && p.Path.Equal(o.Path)
}

// Range is a selection between an anchor and a focus point.
type Range struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

// Collapsed returns a collapsed range at p.
func Collapsed(p Point) Range {
	return Range{Anchor: Point{Path: p.Path.Clone(), Offset: p.Offset}, Focus: Point{Path: p.Path.Clone(), Offset: p.Offset}}
}

// IsCollapsed reports whether anchor and focus are equal.
func (r Range) IsCollapsed() bool {
	return r.Anchor.Equal(r.Focus)
}

// Start returns the earlier of the two points.
func (r Range) Start() Point {
	if r.Anchor.Compare(r.Focus) <= 0 {
		return r.Anchor
	}
	return r.Focus
}

// End returns the later of the two points.
func (r Range) End() Point {
	if r.Anchor.Compare(r.Focus) <= 0 {
		return r.Focus
	}
	return r.Anchor
}

// Clone returns a deep copy of the range.
func (r Range) Clone() Range {
	return Range{
		Anchor: Point{Path: r.Anchor.Path.Clone(), Offset: r.Anchor.Offset},
		Focus:  Point{Path: r.Focus.Path.Clone(), Offset: r.Focus.Offset},
	}
}
