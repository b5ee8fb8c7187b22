package tree_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/tree"
)

// testEditor applies operations directly to a document.
type testEditor struct {
	doc *tree.Document
	ids int
}

func newEditor(nodes ...tree.Node) *testEditor {
	return &testEditor{doc: tree.NewDocument(nodes...)}
}

func (e *testEditor) Document() *tree.Document    { return e.doc }
func (e *testEditor) Apply(op tree.Operation) error { return tree.Apply(e.doc, op) }

func (e *testEditor) NewID() string {
	e.ids++
	return fmt.Sprintf("id%d", e.ids)
}

func (e *testEditor) caret(path tree.Path, offset int) {
	r := tree.Collapsed(tree.Point{Path: path, Offset: offset})
	e.doc.Selection = &r
}

func (e *testEditor) texts() []string {
	var out []string
	for _, c := range e.doc.Children {
		out = append(out, tree.String(c))
	}
	return out
}

func para(id, text string) *tree.Element {
	el := tree.NewElement("p", tree.ClassTextblock, tree.NewText(text))
	el.ID = id
	return el
}

func point(path tree.Path, offset int) tree.Point {
	return tree.Point{Path: path, Offset: offset}
}

func TestClass(t *testing.T) {
	for _, name := range []string{"generic", "text", "textblock", "block", "void", "inline", "leaf"} {
		c, err := tree.ParseClass(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.String())
	}

	c, err := tree.ParseClass("")
	require.NoError(t, err)
	assert.Equal(t, tree.ClassGeneric, c)

	_, err = tree.ParseClass("paragraph")
	assert.ErrorIs(t, err, tree.ErrUnknownClass)

	assert.True(t, tree.ClassBlock.IsHeavy())
	assert.True(t, tree.ClassTextblock.IsHeavy())
	assert.False(t, tree.ClassText.IsHeavy())
	assert.True(t, tree.ClassVoid.IsStructural())
	assert.False(t, tree.ClassTextblock.IsStructural())
}

func TestPath(t *testing.T) {
	p := tree.Path{1, 2}

	assert.Equal(t, tree.Path{1}, p.Parent())
	assert.Equal(t, 2, p.Last())
	assert.Equal(t, tree.Path{1, 3}, p.Next())
	assert.Equal(t, tree.Path{1, 2, 0}, p.Child(0))
	assert.Equal(t, tree.Path{1}, p.Root())

	prev, ok := p.Previous()
	require.True(t, ok)
	assert.Equal(t, tree.Path{1, 1}, prev)
	_, ok = tree.Path{1, 0}.Previous()
	assert.False(t, ok)

	assert.Equal(t, -1, tree.Path{0, 5}.Compare(tree.Path{1}))
	assert.Equal(t, 1, tree.Path{2}.Compare(tree.Path{1, 9}))
	assert.Equal(t, 0, tree.Path{1}.Compare(tree.Path{1, 4}))

	assert.True(t, tree.Path{1}.IsAncestorOf(p))
	assert.False(t, p.IsAncestorOf(p))

	next := p.Next()
	assert.Equal(t, tree.Path{1, 2}, p, "Next must not alias")
	assert.NotEqual(t, p, next)
}

func TestRange(t *testing.T) {
	r := tree.Range{Anchor: point(tree.Path{1, 0}, 2), Focus: point(tree.Path{0, 0}, 4)}
	assert.False(t, r.IsCollapsed())
	assert.Equal(t, point(tree.Path{0, 0}, 4), r.Start())
	assert.Equal(t, point(tree.Path{1, 0}, 2), r.End())
	assert.True(t, tree.Collapsed(point(tree.Path{0}, 1)).IsCollapsed())
}

func TestNode(t *testing.T) {
	el := tree.NewElement("q", tree.ClassBlock,
		para("a", "one "),
		para("b", "two"),
	)
	el.SetProperty("tone", "info")

	assert.Equal(t, "one two", tree.String(el))
	assert.False(t, el.IsEmpty())
	assert.True(t, tree.NewElement("p", tree.ClassTextblock, tree.NewText("  ")).IsEmpty())

	v, ok := el.Property("tone")
	require.True(t, ok)
	assert.Equal(t, "info", v)

	clone := el.Clone().(*tree.Element)
	assert.True(t, tree.Equal(el, clone))
	clone.SetProperty("tone", "warn")
	clone.Children[0].(*tree.Element).Children[0].(*tree.Text).Text = "changed"
	assert.Equal(t, "info", el.Properties["tone"])
	assert.Equal(t, "one two", tree.String(el))
	assert.False(t, tree.Equal(el, clone))

	text := &tree.Text{Text: "x", Decorations: []tree.Decoration{{Kind: "spelling"}}}
	assert.Empty(t, text.Clone().(*tree.Text).Decorations)
	assert.True(t, tree.Equal(text, text.Clone()))
}

func TestApply_Text(t *testing.T) {
	ed := newEditor(para("p1", "hello"))
	ed.caret(tree.Path{0, 0}, 5)

	require.NoError(t, ed.Apply(tree.Operation{Kind: tree.OpInsertText, Path: tree.Path{0, 0}, Offset: 5, Text: "!"}))
	assert.Equal(t, []string{"hello!"}, ed.texts())
	assert.Equal(t, 6, ed.doc.Selection.Anchor.Offset)

	require.NoError(t, ed.Apply(tree.Operation{Kind: tree.OpRemoveText, Path: tree.Path{0, 0}, Offset: 1, Text: "ell"}))
	assert.Equal(t, []string{"ho!"}, ed.texts())
	assert.Equal(t, 3, ed.doc.Selection.Anchor.Offset)

	err := ed.Apply(tree.Operation{Kind: tree.OpInsertText, Path: tree.Path{0, 0}, Offset: 10, Text: "x"})
	assert.ErrorIs(t, err, tree.ErrOffsetOutOfRange)
	var pe *tree.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "insert_text", pe.Op)

	err = ed.Apply(tree.Operation{Kind: tree.OpInsertText, Path: tree.Path{0}, Text: "x"})
	assert.ErrorIs(t, err, tree.ErrNotText)

	err = ed.Apply(tree.Operation{Kind: tree.OpInsertText, Path: tree.Path{3, 0}, Text: "x"})
	assert.ErrorIs(t, err, tree.ErrInvalidPath)

	assert.ErrorIs(t, ed.Apply(tree.Operation{Kind: "bogus"}), tree.ErrUnknownOperation)
}

func TestApply_SplitMerge(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		ed := newEditor(para("p1", "hello"))
		ed.caret(tree.Path{0, 0}, 3)

		require.NoError(t, ed.Apply(tree.Operation{Kind: tree.OpSplitNode, Path: tree.Path{0, 0}, Position: 2}))
		children := ed.doc.Children[0].(*tree.Element).Children
		require.Len(t, children, 2)
		assert.Equal(t, "he", tree.String(children[0]))
		assert.Equal(t, "llo", tree.String(children[1]))
		assert.Equal(t, point(tree.Path{0, 1}, 1), ed.doc.Selection.Anchor)

		require.NoError(t, ed.Apply(tree.Operation{Kind: tree.OpMergeNode, Path: tree.Path{0, 1}}))
		assert.Equal(t, []string{"hello"}, ed.texts())
		assert.Equal(t, point(tree.Path{0, 0}, 3), ed.doc.Selection.Anchor)
	})

	t.Run("element", func(t *testing.T) {
		p := tree.NewElement("p", tree.ClassTextblock, tree.NewText("a"), tree.NewText("b"))
		p.ID = "p1"
		ed := newEditor(p)
		ed.caret(tree.Path{0, 1}, 1)

		require.NoError(t, ed.Apply(tree.Operation{
			Kind:       tree.OpSplitNode,
			Path:       tree.Path{0},
			Position:   1,
			Properties: map[string]any{"id": "p2"},
		}))
		assert.Equal(t, []string{"a", "b"}, ed.texts())
		right := ed.doc.Children[1].(*tree.Element)
		assert.Equal(t, "p2", right.ID)
		assert.Equal(t, "p", right.Type)
		assert.Equal(t, point(tree.Path{1, 0}, 1), ed.doc.Selection.Anchor)
	})

	t.Run("mismatch", func(t *testing.T) {
		ed := newEditor(tree.NewElement("p", tree.ClassTextblock, tree.NewText("a"), para("x", "b")))
		err := ed.Apply(tree.Operation{Kind: tree.OpMergeNode, Path: tree.Path{0, 1}})
		assert.ErrorIs(t, err, tree.ErrMergeMismatch)
	})
}

func TestApply_RemoveNodeRelocatesSelection(t *testing.T) {
	ed := newEditor(para("p1", "ab"), para("p2", "cd"))
	ed.caret(tree.Path{1, 0}, 1)

	require.NoError(t, tree.RemoveNodes(ed, tree.Path{1}))
	require.NotNil(t, ed.doc.Selection)
	assert.Equal(t, point(tree.Path{0, 0}, 2), ed.doc.Selection.Anchor)

	require.NoError(t, tree.RemoveNodes(ed, tree.Path{0}))
	assert.Nil(t, ed.doc.Selection)
}

func TestSetNodes(t *testing.T) {
	ed := newEditor(para("p1", "x"))

	require.NoError(t, tree.SetNodes(ed, tree.Path{0}, map[string]any{"level": 2, "tone": "info"}))
	require.NoError(t, tree.SetNodes(ed, tree.Path{0}, map[string]any{"tone": nil}))
	el := ed.doc.Children[0].(*tree.Element)
	assert.Equal(t, map[string]any{"level": 2}, el.Properties)

	require.NoError(t, tree.Retype(ed, tree.Path{0}, "h", tree.ClassBlock))
	assert.Equal(t, "h", el.Type)
	assert.Equal(t, tree.ClassBlock, el.Class)

	assert.ErrorIs(t, tree.SetNodes(ed, tree.Path{0, 0}, nil), tree.ErrNotElement)
}

func TestInsertNodes_AssignsIDs(t *testing.T) {
	ed := newEditor(para("dup", "x"))
	nested := tree.NewElement("q", tree.ClassBlock, tree.NewElement("p", tree.ClassTextblock, tree.NewText("y")))
	nested.ID = "dup"

	require.NoError(t, tree.InsertNodes(ed, tree.Path{1}, nested, para("", "z")))
	q := ed.doc.Children[1].(*tree.Element)
	assert.Equal(t, "id1", q.ID)
	assert.Equal(t, "id2", q.Children[0].(*tree.Element).ID)
	assert.Equal(t, "id3", ed.doc.Children[2].(*tree.Element).ID)
	assert.Equal(t, "dup", nested.ID, "inserted nodes are copies")
}

func TestDeleteBackward(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		unit   tree.Unit
		want   string
	}{
		{"grapheme cluster", "cafe\u0301", 6, tree.UnitCharacter, "caf"},
		{"word with trailing space", "hello world  ", 13, tree.UnitWord, "hello "},
		{"line", "ab\ncd", 5, tree.UnitLine, "ab\n"},
		{"newline", "ab\n", 3, tree.UnitLine, "ab"},
		{"block", "abc", 2, tree.UnitBlock, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newEditor(para("p1", tt.text))
			ed.caret(tree.Path{0, 0}, tt.offset)
			require.NoError(t, tree.DeleteBackward(ed, tt.unit))
			assert.Equal(t, []string{tt.want}, ed.texts())
		})
	}
}

func TestDeleteBackward_Blocks(t *testing.T) {
	t.Run("merges into previous block", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"), para("p2", "cd"))
		ed.caret(tree.Path{1, 0}, 0)

		require.NoError(t, tree.DeleteBackward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"abcd"}, ed.texts())
		assert.Len(t, ed.doc.Children[0].(*tree.Element).Children, 1)
		assert.Equal(t, point(tree.Path{0, 0}, 2), ed.doc.Selection.Anchor)
	})

	t.Run("removes previous void", func(t *testing.T) {
		void := tree.NewElement("img", tree.ClassVoid, tree.NewText(""))
		ed := newEditor(void, para("p1", "ab"))
		ed.caret(tree.Path{1, 0}, 0)

		require.NoError(t, tree.DeleteBackward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"ab"}, ed.texts())
	})

	t.Run("document start is a no-op", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"))
		ed.caret(tree.Path{0, 0}, 0)
		require.NoError(t, tree.DeleteBackward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"ab"}, ed.texts())
	})

	t.Run("expanded selection", func(t *testing.T) {
		ed := newEditor(para("p1", "hello"))
		ed.doc.Selection = &tree.Range{Anchor: point(tree.Path{0, 0}, 4), Focus: point(tree.Path{0, 0}, 1)}
		require.NoError(t, tree.DeleteBackward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"ho"}, ed.texts())
		assert.True(t, ed.doc.Selection.IsCollapsed())
		assert.Equal(t, 1, ed.doc.Selection.Anchor.Offset)
	})

	t.Run("no selection", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"))
		require.NoError(t, tree.DeleteBackward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"ab"}, ed.texts())
	})
}

func TestDeleteForward(t *testing.T) {
	t.Run("character", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"))
		ed.caret(tree.Path{0, 0}, 0)
		require.NoError(t, tree.DeleteForward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"b"}, ed.texts())
	})

	t.Run("word", func(t *testing.T) {
		ed := newEditor(para("p1", "  hello world"))
		ed.caret(tree.Path{0, 0}, 0)
		require.NoError(t, tree.DeleteForward(ed, tree.UnitWord))
		assert.Equal(t, []string{" world"}, ed.texts())
	})

	t.Run("merges next block", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"), para("p2", "cd"))
		ed.caret(tree.Path{0, 0}, 2)
		require.NoError(t, tree.DeleteForward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"abcd"}, ed.texts())
		assert.Equal(t, "p1", ed.doc.Children[0].(*tree.Element).ID)
	})

	t.Run("document end is a no-op", func(t *testing.T) {
		ed := newEditor(para("p1", "ab"))
		ed.caret(tree.Path{0, 0}, 2)
		require.NoError(t, tree.DeleteForward(ed, tree.UnitCharacter))
		assert.Equal(t, []string{"ab"}, ed.texts())
	})
}

func TestDeleteRange_AcrossBlocks(t *testing.T) {
	ed := newEditor(para("p1", "abc"), para("p2", "mid"), para("p3", "xyz"))

	r := tree.Range{Anchor: point(tree.Path{0, 0}, 1), Focus: point(tree.Path{2, 0}, 2)}
	require.NoError(t, tree.DeleteRange(ed, r))
	assert.Equal(t, []string{"az"}, ed.texts())
	assert.Equal(t, point(tree.Path{0, 0}, 1), ed.doc.Selection.Anchor)
}

func TestInsertText(t *testing.T) {
	ed := newEditor(para("p1", "hello"))
	assert.ErrorIs(t, tree.InsertText(ed, "x"), tree.ErrNoSelection)

	ed.doc.Selection = &tree.Range{Anchor: point(tree.Path{0, 0}, 1), Focus: point(tree.Path{0, 0}, 4)}
	require.NoError(t, tree.InsertText(ed, "ipp"))
	assert.Equal(t, []string{"hippo"}, ed.texts())
	assert.Equal(t, point(tree.Path{0, 0}, 4), ed.doc.Selection.Anchor)

	require.NoError(t, tree.InsertSoftBreak(ed))
	assert.Equal(t, []string{"hipp\no"}, ed.texts())
}

func TestSplitBlock(t *testing.T) {
	ed := newEditor(para("p1", "hello"))
	ed.caret(tree.Path{0, 0}, 2)

	require.NoError(t, tree.SplitBlock(ed))
	assert.Equal(t, []string{"he", "llo"}, ed.texts())
	assert.Equal(t, "p1", ed.doc.Children[0].(*tree.Element).ID)
	assert.Equal(t, "id1", ed.doc.Children[1].(*tree.Element).ID)
	assert.Equal(t, point(tree.Path{1, 0}, 0), ed.doc.Selection.Anchor)
}

func TestWrapUnwrapLift(t *testing.T) {
	ed := newEditor(para("p1", "a"), para("p2", "b"), para("p3", "c"))
	ed.caret(tree.Path{1, 0}, 1)

	require.NoError(t, tree.WrapNodes(ed, nil, 0, 2, tree.NewElement("q", tree.ClassBlock)))
	require.Len(t, ed.doc.Children, 2)
	q := ed.doc.Children[0].(*tree.Element)
	assert.Equal(t, "q", q.Type)
	assert.Equal(t, "ab", tree.String(q))
	assert.Equal(t, point(tree.Path{0, 1, 0}, 1), ed.doc.Selection.Anchor)

	require.NoError(t, tree.LiftNode(ed, tree.Path{0, 1}))
	assert.Equal(t, []string{"a", "b", "c"}, ed.texts())
	assert.Equal(t, point(tree.Path{1, 0}, 1), ed.doc.Selection.Anchor)

	require.NoError(t, tree.UnwrapNodes(ed, tree.Path{0}))
	assert.Equal(t, []string{"a", "b", "c"}, ed.texts())
	assert.Equal(t, "p1", ed.doc.Children[0].(*tree.Element).ID)

	assert.ErrorIs(t, tree.LiftNode(ed, tree.Path{0}), tree.ErrInvalidPath)
}

func TestDocument_Lookup(t *testing.T) {
	q := tree.NewElement("q", tree.ClassBlock, para("inner", "b"))
	q.ID = "q"
	doc := tree.NewDocument(para("p1", "a"), q)

	e, ok := doc.Find("inner")
	require.True(t, ok)
	assert.Equal(t, tree.Path{1, 0}, e.Path)
	assert.Equal(t, 1, doc.IndexOf("q"))
	assert.Equal(t, -1, doc.IndexOf("inner"))

	block, ok := doc.Block(tree.Path{1, 0, 0})
	require.True(t, ok)
	assert.Equal(t, "inner", block.Element().ID)

	prev, ok := doc.PreviousText(tree.Path{1, 0, 0})
	require.True(t, ok)
	assert.Equal(t, tree.Path{0, 0}, prev.Path)
	_, ok = doc.NextText(tree.Path{1, 0, 0})
	assert.False(t, ok)

	end, ok := doc.End(tree.Path{1})
	require.True(t, ok)
	assert.Equal(t, point(tree.Path{1, 0, 0}, 1), end)
	assert.Len(t, doc.Roots(), 2)

	clone := doc.Clone()
	clone.Children[0].(*tree.Element).ID = "changed"
	assert.Equal(t, "p1", doc.Children[0].(*tree.Element).ID)
}

func TestJSON(t *testing.T) {
	el := para("p1", "bold")
	el.SetProperty("level", 2)
	text := el.Children[0].(*tree.Text)
	text.Marks = map[string]any{"bold": true}
	text.Placeholder = "Type"
	text.Decorations = []tree.Decoration{{Kind: "spelling", Start: 0, End: 4}}

	data, err := tree.MarshalNodes([]tree.Node{el})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "p1",
		"type": "p",
		"class": "textblock",
		"properties": {"level": 2},
		"children": [{"text": "bold", "placeholder": "Type", "bold": true}]
	}]`, string(data))

	nodes, err := tree.UnmarshalNodes(data)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	got := nodes[0].(*tree.Element)
	assert.Equal(t, tree.ClassTextblock, got.Class)
	assert.Equal(t, 2, got.Properties["level"])
	leaf := got.Children[0].(*tree.Text)
	assert.Equal(t, "Type", leaf.Placeholder)
	assert.Equal(t, map[string]any{"bold": true}, leaf.Marks)

	assert.True(t, tree.Equal(el, got))

	empty, err := tree.MarshalNodes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))

	_, err = tree.UnmarshalNodes([]byte(`[{"type":"p","class":"paragraph","children":[]}]`))
	assert.Error(t, err)
	_, err = tree.UnmarshalNodes([]byte(`{}`))
	assert.Error(t, err)
}

func TestEqual_PropertyValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int and float", 2, float64(2), true},
		{"int and int64", 3, int64(3), true},
		{"different numbers", 2, 2.5, false},
		{"number and string", 2, "2", false},
		{"nested maps", map[string]any{"w": 1}, map[string]any{"w": float64(1)}, true},
		{"lists", []any{1, "a"}, []any{float64(1), "a"}, true},
		{"list lengths", []any{1}, []any{1, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tree.NewElement("p", tree.ClassTextblock)
			a.SetProperty("v", tt.a)
			b := tree.NewElement("p", tree.ClassTextblock)
			b.SetProperty("v", tt.b)
			assert.Equal(t, tt.want, tree.Equal(a, b))
		})
	}
}

func TestJSON_NestedNumbers(t *testing.T) {
	nodes, err := tree.UnmarshalNodes([]byte(`[{"id":"a","type":"img","class":"void",
		"properties":{"size":{"w":640,"h":480.5},"tags":[1,"x"]},"children":[{"text":"","weight":700}]}]`))
	require.NoError(t, err)
	el := nodes[0].(*tree.Element)
	assert.Equal(t, map[string]any{"w": 640, "h": 480.5}, el.Properties["size"])
	assert.Equal(t, []any{1, "x"}, el.Properties["tags"])
	assert.Equal(t, map[string]any{"weight": 700}, el.Children[0].(*tree.Text).Marks)
}
