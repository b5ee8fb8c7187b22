package spellcheck

import (
	"github.com/dshills/inkwell/internal/tree"
)

// DecorationKind marks spelling decorations.
const DecorationKind = "spelling"

// LeafDecoration is a decoration positioned on one text leaf.
type LeafDecoration struct {
	Path       tree.Path
	Decoration tree.Decoration
}

// Decorations maps the findings for the root element at path onto its text
// leaves. A finding that spans several leaves yields one decoration per leaf.
// Nothing is returned when the recorded text no longer matches the element.
func (t *Table) Decorations(el *tree.Element, path tree.Path) []LeafDecoration {
	entry, ok := t.Get(el.ID)
	if !ok || len(entry.Spelling) == 0 || entry.Text != tree.String(el) {
		return nil
	}

	type leaf struct {
		path       tree.Path
		start, end int
	}
	var leaves []leaf
	offset := 0
	var collect func(n tree.Node, p tree.Path)
	collect = func(n tree.Node, p tree.Path) {
		switch n := n.(type) {
		case *tree.Text:
			leaves = append(leaves, leaf{path: p, start: offset, end: offset + len(n.Text)})
			offset += len(n.Text)
		case *tree.Element:
			for i, c := range n.Children {
				collect(c, p.Child(i))
			}
		}
	}
	collect(el, path)

	var out []LeafDecoration
	for _, f := range entry.Spelling {
		fs, fe := f.Offset, f.Offset+len(f.Text)
		for _, l := range leaves {
			s, e := max(fs, l.start), min(fe, l.end)
			if s >= e {
				continue
			}
			out = append(out, LeafDecoration{
				Path: l.path.Clone(),
				Decoration: tree.Decoration{
					Kind:   DecorationKind,
					Start:  s - l.start,
					End:    e - l.start,
					Detail: f.Subs,
				},
			})
		}
	}
	return out
}

// Decorations returns the spelling decorations for the root element with
// the given id.
func (c *Coordinator) Decorations(id string) []LeafDecoration {
	var out []LeafDecoration
	c.ed.Read(func(doc *tree.Document) {
		entry, ok := doc.Find(id)
		if !ok || len(entry.Path) != 1 {
			return
		}
		if el := entry.Element(); el != nil {
			out = c.table.Decorations(el, entry.Path)
		}
	})
	return out
}

// Decorate attaches spelling decorations to every text leaf of doc. doc
// should be a copy; decorations are never persisted.
func (t *Table) Decorate(doc *tree.Document) {
	for _, root := range doc.Roots() {
		el := root.Element()
		if el == nil {
			continue
		}
		for _, d := range t.Decorations(el, root.Path) {
			txt, err := doc.Text(d.Path)
			if err != nil {
				continue
			}
			txt.Decorations = append(txt.Decorations, d.Decoration)
		}
	}
}
