package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/plugin"
)

func items(titles ...string) []Item {
	out := make([]Item, len(titles))
	for i, title := range titles {
		out[i] = Item{ResolvedAction: plugin.ResolvedAction{
			Action: plugin.Action{Title: title},
			Name:   "test/" + title,
		}}
	}
	return out
}

func titles(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Title
	}
	return out
}

func TestSearch(t *testing.T) {
	all := items("Code block", "Heading 1", "Heading 2", "Blockquote", "Image")

	tests := []struct {
		query string
		want  []string
	}{
		{"code", []string{"Code block"}},
		{"h2", []string{"Heading 2"}},
		{"bq", []string{"Blockquote"}},
		{"block", []string{"Blockquote", "Code block"}},
		{"HEAD", []string{"Heading 1", "Heading 2"}},
		{"  img ", []string{"Image"}},
		{"zz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(Search(all, tt.query, 0)))
		})
	}
}

func TestSearch_Positions(t *testing.T) {
	got := Search(items("Heading 2"), "h2", 0)
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 8}, got[0].Positions)
	assert.Positive(t, got[0].Score)
}

func TestSearch_EmptyQuery(t *testing.T) {
	all := items("a", "b", "c")

	got := Search(all, "", 0)
	assert.Equal(t, []string{"a", "b", "c"}, titles(got))
	assert.Zero(t, got[0].Score)

	assert.Equal(t, []string{"a", "b"}, titles(Search(all, " ", 2)))
}

func TestSearch_Limit(t *testing.T) {
	all := items("Heading 1", "Heading 2", "Heading 3")
	assert.Len(t, Search(all, "heading", 2), 2)
	assert.Len(t, Search(all, "heading", 5), 3)
}

func TestScore_PrefersWordStarts(t *testing.T) {
	start := score([]rune("cb"), "Code block", []int{0, 5})
	middle := score([]rune("cb"), "Acbx", []int{1, 2})
	assert.Greater(t, start, middle)

	assert.True(t, isBoundary([]rune("Code block"), 5))
	assert.True(t, isBoundary([]rune("codeBlock"), 4))
	assert.False(t, isBoundary([]rune("codeblock"), 4))
}
