package spellcheck

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDictionary_Check(t *testing.T) {
	d := NewDictionary(language.English, "the", "quick", "brown", "fox", "box")

	got, err := d.Check(context.Background(), []string{
		"The quick browm fox",
		"",
		"fox 42 b0x",
		"Teh fix",
	})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []Finding{{Offset: 10, Text: "browm", Subs: []string{"brown"}}}, got[0])
	assert.Empty(t, got[1])
	assert.Empty(t, got[2])
	assert.Equal(t, []Finding{
		{Offset: 0, Text: "Teh", Subs: []string{"the"}},
		{Offset: 4, Text: "fix", Subs: []string{"fox"}},
	}, got[3])
}

func TestDictionary_CheckCanceled(t *testing.T) {
	d := NewDictionary(language.English, "word")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Check(ctx, []string{"word"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadDictionary(t *testing.T) {
	d, err := LoadDictionary(language.English, strings.NewReader("# words\nalpha\n\n  Beta \n"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.True(t, d.Contains("ALPHA"))
	assert.True(t, d.Contains("beta"))
	assert.False(t, d.Contains("gamma"))
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"cat", "cat", true},
		{"cat", "cut", true},
		{"cat", "cats", true},
		{"cat", "at", true},
		{"cat", "act", true},
		{"cat", "dog", false},
		{"cat", "tac", false},
		{"cat", "c", false},
		{"naïve", "naive", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, withinOneEdit([]rune(tt.a), []rune(tt.b)))
		})
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name                   string
		document, element, env string
		want                   language.Tag
	}{
		{"document wins", "fr", "de", "en_US.UTF-8", language.French},
		{"element next", "", "de", "en_US.UTF-8", language.German},
		{"environment locale", "", "", "pt_BR.UTF-8", language.BrazilianPortuguese},
		{"invalid skipped", "!!", "", "es", language.Spanish},
		{"posix locale ignored", "", "", "C.UTF-8", DefaultLanguage},
		{"nothing set", "", "", "", DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.document, tt.element, tt.env))
		})
	}
}

func TestDictionary_SuggestAfterAdd(t *testing.T) {
	d := NewDictionary(language.English, "cat")
	assert.Equal(t, []string{"cat"}, d.Suggest("cot"))

	got := d.Suggest("Cot")
	got[0] = "changed"
	assert.Equal(t, []string{"cat"}, d.Suggest("cot"))

	d.Add("cot")
	assert.Equal(t, []string{"cat", "cot"}, d.Suggest("cot"))
}
