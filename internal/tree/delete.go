package tree

import (
	"maps"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Unit is the extent of a single delete command.
type Unit int

// Deletion units.
const (
	UnitCharacter Unit = iota
	UnitWord
	UnitLine
	UnitBlock
)

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case UnitCharacter:
		return "character"
	case UnitWord:
		return "word"
	case UnitLine:
		return "line"
	case UnitBlock:
		return "block"
	}
	return "unknown"
}

// segments splits s into grapheme clusters or words.
func segments(s string, unit Unit) []string {
	var out []string
	state := -1
	for len(s) > 0 {
		var seg string
		if unit == UnitWord {
			seg, s, state = uniseg.FirstWordInString(s, state)
		} else {
			seg, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		}
		out = append(out, seg)
	}
	return out
}

func isSpace(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// unitBefore returns the byte length of one unit ending at the end of s.
func unitBefore(s string, unit Unit) int {
	switch unit {
	case UnitBlock:
		return len(s)
	case UnitLine:
		if i := strings.LastIndexByte(s, '\n'); i >= 0 && i < len(s)-1 {
			return len(s) - i - 1
		} else if i == len(s)-1 {
			return 1
		}
		return len(s)
	case UnitWord:
		segs := segments(s, UnitWord)
		n := 0
		i := len(segs) - 1
		for ; i >= 0 && isSpace(segs[i]); i-- {
			n += len(segs[i])
		}
		if i >= 0 {
			n += len(segs[i])
		}
		return n
	}
	segs := segments(s, UnitCharacter)
	if len(segs) == 0 {
		return 0
	}
	return len(segs[len(segs)-1])
}

// unitAfter returns the byte length of one unit starting at the start of s.
func unitAfter(s string, unit Unit) int {
	switch unit {
	case UnitBlock:
		return len(s)
	case UnitLine:
		if i := strings.IndexByte(s, '\n'); i > 0 {
			return i
		} else if i == 0 {
			return 1
		}
		return len(s)
	case UnitWord:
		segs := segments(s, UnitWord)
		n := 0
		i := 0
		for ; i < len(segs) && isSpace(segs[i]); i++ {
			n += len(segs[i])
		}
		if i < len(segs) {
			n += len(segs[i])
		}
		return n
	}
	segs := segments(s, UnitCharacter)
	if len(segs) == 0 {
		return 0
	}
	return len(segs[0])
}

// DeleteRange removes the content of r and merges the blocks at its edges.
// The selection collapses to the start of r.
func DeleteRange(ed Editor, r Range) error {
	doc := ed.Document()
	start, end := r.Start(), r.End()

	if start.Path.Equal(end.Path) {
		t, err := doc.Text(start.Path)
		if err != nil {
			return err
		}
		if end.Offset > start.Offset {
			op := Operation{Kind: OpRemoveText, Path: start.Path.Clone(), Offset: start.Offset, Text: t.Text[start.Offset:end.Offset]}
			if err := ed.Apply(op); err != nil {
				return err
			}
		}
		return Select(ed, Collapsed(start))
	}

	startBlock, hasStart := doc.Block(start.Path)
	endBlock, hasEnd := doc.Block(end.Path)

	endText, err := doc.Text(end.Path)
	if err != nil {
		return err
	}
	if end.Offset > 0 {
		op := Operation{Kind: OpRemoveText, Path: end.Path.Clone(), Offset: 0, Text: endText.Text[:end.Offset]}
		if err := ed.Apply(op); err != nil {
			return err
		}
	}
	startText, err := doc.Text(start.Path)
	if err != nil {
		return err
	}
	if start.Offset < len(startText.Text) {
		op := Operation{Kind: OpRemoveText, Path: start.Path.Clone(), Offset: start.Offset, Text: startText.Text[start.Offset:]}
		if err := ed.Apply(op); err != nil {
			return err
		}
	}

	var covered []Path
	doc.Walk(func(e Entry) bool {
		if e.Path.Compare(start.Path) > 0 && e.Path.Compare(end.Path) < 0 {
			covered = append(covered, e.Path)
			return false
		}
		return true
	})
	endBlockPath := endBlock.Path
	for i := len(covered) - 1; i >= 0; i-- {
		if err := RemoveNodes(ed, covered[i]); err != nil {
			return err
		}
		if hasEnd {
			endBlockPath, _ = endBlockPath.transformRemove(covered[i])
		}
	}

	if hasStart && hasEnd && !startBlock.Path.Equal(endBlockPath) {
		if err := MergeBlocks(ed, startBlock.Path, endBlockPath); err != nil {
			return err
		}
	}
	return Select(ed, Collapsed(start))
}

// MergeBlocks moves the children of the block at source to the end of the
// block at target, removes source and any ancestors it leaves empty.
func MergeBlocks(ed Editor, target, source Path) error {
	doc := ed.Document()
	dst, err := doc.Element(target)
	if err != nil {
		return err
	}
	src, err := doc.Element(source)
	if err != nil {
		return err
	}
	joint := len(dst.Children)
	count := len(src.Children)
	for i := 0; i < count; i++ {
		if err := MoveNode(ed, source.Child(0), target.Child(joint+i)); err != nil {
			return err
		}
	}

	if joint > 0 && count > 0 {
		left, lok := dst.Children[joint-1].(*Text)
		right, rok := dst.Children[joint].(*Text)
		if lok && rok && maps.Equal(left.Marks, right.Marks) {
			if err := ed.Apply(Operation{Kind: OpMergeNode, Path: target.Child(joint), Position: len(left.Text)}); err != nil {
				return err
			}
		}
	}

	p := source
	for len(p) > 0 {
		el, err := doc.Element(p)
		if err != nil || len(el.Children) > 0 {
			break
		}
		if err := RemoveNodes(ed, p); err != nil {
			return err
		}
		p = p.Parent()
	}
	return nil
}

// DeleteBackward is the default backward delete: it removes one unit before
// a collapsed caret, or merges the current block into the previous one at a
// block start.
func DeleteBackward(ed Editor, unit Unit) error {
	doc := ed.Document()
	sel := doc.Selection
	if sel == nil {
		return nil
	}
	if !sel.IsCollapsed() {
		return DeleteRange(ed, *sel)
	}
	at := sel.Anchor
	t, err := doc.Text(at.Path)
	if err != nil {
		return err
	}
	if at.Offset > 0 {
		n := unitBefore(t.Text[:at.Offset], unit)
		from := at.Offset - n
		return ed.Apply(Operation{Kind: OpRemoveText, Path: at.Path.Clone(), Offset: from, Text: t.Text[from:at.Offset]})
	}

	prev, ok := doc.PreviousText(at.Path)
	if !ok {
		return nil
	}
	block, _ := doc.Block(at.Path)
	prevBlock, ok := doc.Block(prev.Path)
	if ok && prevBlock.Element().Class == ClassVoid {
		return RemoveNodes(ed, prevBlock.Path)
	}
	pt := prev.Node.(*Text)
	if ok && block.Path.Equal(prevBlock.Path) {
		n := unitBefore(pt.Text, unit)
		from := len(pt.Text) - n
		return ed.Apply(Operation{Kind: OpRemoveText, Path: prev.Path.Clone(), Offset: from, Text: pt.Text[from:]})
	}
	return DeleteRange(ed, Range{Anchor: Point{Path: prev.Path, Offset: len(pt.Text)}, Focus: at})
}

// DeleteForward is the default forward delete, symmetric to DeleteBackward.
func DeleteForward(ed Editor, unit Unit) error {
	doc := ed.Document()
	sel := doc.Selection
	if sel == nil {
		return nil
	}
	if !sel.IsCollapsed() {
		return DeleteRange(ed, *sel)
	}
	at := sel.Anchor
	t, err := doc.Text(at.Path)
	if err != nil {
		return err
	}
	if at.Offset < len(t.Text) {
		n := unitAfter(t.Text[at.Offset:], unit)
		return ed.Apply(Operation{Kind: OpRemoveText, Path: at.Path.Clone(), Offset: at.Offset, Text: t.Text[at.Offset : at.Offset+n]})
	}

	next, ok := doc.NextText(at.Path)
	if !ok {
		return nil
	}
	block, _ := doc.Block(at.Path)
	nextBlock, ok := doc.Block(next.Path)
	if ok && nextBlock.Element().Class == ClassVoid {
		return RemoveNodes(ed, nextBlock.Path)
	}
	nt := next.Node.(*Text)
	if ok && block.Path.Equal(nextBlock.Path) {
		n := unitAfter(nt.Text, unit)
		return ed.Apply(Operation{Kind: OpRemoveText, Path: next.Path.Clone(), Offset: 0, Text: nt.Text[:n]})
	}
	return DeleteRange(ed, Range{Anchor: at, Focus: Point{Path: next.Path, Offset: 0}})
}
