package heading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/action"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/plugins/pluginstest"
	"github.com/dshills/inkwell/internal/tree"
)

func TestToggle(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, paragraph.New("Title"))

	pluginstest.Dispatch(t, ed, Name+"/1")
	el := pluginstest.Root(t, ed, 0)
	assert.Equal(t, Name, el.Type)
	assert.Equal(t, 2, Level(el))
	assert.Equal(t, "Title", tree.String(el))

	pluginstest.Dispatch(t, ed, Name+"/0")
	assert.Equal(t, 1, Level(pluginstest.Root(t, ed, 0)))

	pluginstest.Dispatch(t, ed, Name+"/0")
	el = pluginstest.Root(t, ed, 0)
	assert.Equal(t, paragraph.Name, el.Type)
	_, ok := el.Property(LevelKey)
	assert.False(t, ok)
}

func TestRoundTripKeepsLevel(t *testing.T) {
	h := New(2, "Title")
	h.ID = "h1"

	data, err := tree.MarshalNodes([]tree.Node{h})
	require.NoError(t, err)
	nodes, err := tree.UnmarshalNodes(data)
	require.NoError(t, err)

	require.Len(t, nodes, 1)
	assert.True(t, tree.Equal(h, nodes[0]))
	assert.Equal(t, 2, nodes[0].(*tree.Element).Properties[LevelKey])
}

func TestVisibility(t *testing.T) {
	ed := pluginstest.NewEditor(t, Plugin())
	pluginstest.Load(t, ed, New(3, "deep"))

	var states []plugin.Visibility
	for _, item := range action.Available(ed) {
		if item.Plugin == Name {
			states = append(states, item.State)
		}
	}
	require.Len(t, states, MaxLevel)
	assert.False(t, states[0].Active)
	assert.False(t, states[1].Active)
	assert.True(t, states[2].Active)
	assert.True(t, states[2].Enabled)
}

func TestShortcut(t *testing.T) {
	tests := []struct {
		text      string
		wantType  string
		wantLevel int
		wantText  string
	}{
		{"#", Name, 1, ""},
		{"###", Name, 3, ""},
		{"####", paragraph.Name, 0, "#### "},
		{"#a", paragraph.Name, 0, "#a "},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ed := pluginstest.NewEditor(t, Plugin())
			pluginstest.Load(t, ed, paragraph.New(tt.text))
			pluginstest.Caret(t, ed, tree.Path{0, 0}, len(tt.text))

			require.NoError(t, ed.InsertText(" "))

			el := pluginstest.Root(t, ed, 0)
			assert.Equal(t, tt.wantType, el.Type)
			assert.Equal(t, tt.wantText, tree.String(el))
			if tt.wantLevel > 0 {
				assert.Equal(t, tt.wantLevel, Level(el))
			}
		})
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		name  string
		level any
		want  int
	}{
		{"decoded float", float64(2), 2},
		{"missing", nil, 1},
		{"too deep", 9, MaxLevel},
		{"garbage", "x", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := pluginstest.NewEditor(t, Plugin())
			el := tree.NewElement(Name, tree.ClassTextblock, tree.NewText("h"))
			if tt.level != nil {
				el.SetProperty(LevelKey, tt.level)
			}
			pluginstest.Load(t, ed, el)

			got, ok := pluginstest.Root(t, ed, 0).Property(LevelKey)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
