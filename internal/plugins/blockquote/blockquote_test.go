package blockquote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/plugins/pluginstest"
	"github.com/dshills/inkwell/internal/tree"
)

func TestInsert_EmptySelection(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())

	pluginstest.Dispatch(t, ed, Name+"/0")

	require.Equal(t, []string{Name}, pluginstest.Types(ed))
	quote := pluginstest.Root(t, ed, 0)
	assert.Equal(t, tree.ClassBlock, quote.Class)
	assert.Equal(t, []string{BodyType, CaptionType}, pluginstest.ChildTypes(quote))
	assert.NotEmpty(t, quote.ID)

	sel := ed.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, tree.Path{0, 0, 0}, sel.Anchor.Path)
}

func TestInsert_ReplacesEmptyParagraph(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, paragraph.New("first"), paragraph.New(""))
	pluginstest.Caret(t, ed, tree.Path{1, 0}, 0)

	pluginstest.Dispatch(t, ed, Name+"/0")

	assert.Equal(t, []string{paragraph.Name, Name}, pluginstest.Types(ed))
}

func TestInsert_QuotesParagraph(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, paragraph.New("to be"))

	pluginstest.Dispatch(t, ed, Name+"/0")

	require.Equal(t, []string{Name}, pluginstest.Types(ed))
	quote := pluginstest.Root(t, ed, 0)
	assert.Equal(t, "to be", tree.String(quote.Children[0]))
	assert.Equal(t, "", tree.String(quote.Children[1]))

	sel := ed.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, tree.Point{Path: tree.Path{0, 0, 0}, Offset: 5}, sel.Anchor)
	assert.True(t, sel.IsCollapsed())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		node      *tree.Element
		wantTypes []string
		wantText  []string
		wantSlots []string
	}{
		{
			name:      "missing caption appended",
			node:      tree.NewElement(Name, tree.ClassBlock, tree.NewElement(BodyType, tree.ClassText, tree.NewText("a"))),
			wantTypes: []string{Name},
			wantText:  []string{"a"},
			wantSlots: []string{"a", ""},
		},
		{
			name:      "caption only keeps its role",
			node:      tree.NewElement(Name, tree.ClassBlock, tree.NewElement(CaptionType, tree.ClassText, tree.NewText("Author"))),
			wantTypes: []string{Name},
			wantText:  []string{"Author"},
			wantSlots: []string{"", "Author"},
		},
		{
			name: "excess child demoted",
			node: tree.NewElement(Name, tree.ClassBlock,
				tree.NewElement(BodyType, tree.ClassText, tree.NewText("a")),
				tree.NewElement(CaptionType, tree.ClassText, tree.NewText("b")),
				tree.NewElement(BodyType, tree.ClassText, tree.NewText("c")),
			),
			wantTypes: []string{Name, paragraph.Name},
			wantText:  []string{"ab", "c"},
		},
		{
			name: "heavy child adopted",
			node: tree.NewElement(Name, tree.ClassBlock,
				paragraph.New("quoted"),
			),
			wantTypes: []string{Name},
			wantText:  []string{"quoted"},
			wantSlots: []string{"quoted", ""},
		},
		{
			name:      "empty quote removed",
			node:      tree.NewElement(Name, tree.ClassBlock),
			wantTypes: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := pluginstest.NewEditor(t, Plugin())
			pluginstest.Load(t, ed, tt.node)

			assert.Equal(t, tt.wantTypes, pluginstest.Types(ed))
			for i, want := range tt.wantText {
				assert.Equal(t, want, tree.String(pluginstest.Root(t, ed, i)))
			}
			if len(tt.wantTypes) > 0 {
				quote := pluginstest.Root(t, ed, 0)
				assert.Equal(t, []string{BodyType, CaptionType}, pluginstest.ChildTypes(quote))
				for i, want := range tt.wantSlots {
					assert.Equal(t, want, tree.String(quote.Children[i]))
				}
			}
		})
	}
}

func TestBodyBreakInsertsNewline(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, New("ab", "c"))
	pluginstest.Caret(t, ed, tree.Path{0, 0, 0}, 1)

	require.NoError(t, ed.InsertBreak())

	quote := pluginstest.Root(t, ed, 0)
	assert.Equal(t, []string{BodyType, CaptionType}, pluginstest.ChildTypes(quote))
	assert.Equal(t, "a\nb", tree.String(quote.Children[0]))
}

func TestCaptionRejectsBreaks(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, New("ab", "cd"))
	pluginstest.Caret(t, ed, tree.Path{0, 1, 0}, 1)
	before := ed.Snapshot()

	require.NoError(t, ed.InsertBreak())
	require.NoError(t, ed.InsertSoftBreak())

	after := ed.Snapshot()
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, tree.Equal(before[i], after[i]))
	}
}
