package spellcheck

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxSuggestions caps the substitutions returned per finding.
const MaxSuggestions = 5

// suggestionTTL bounds how long a suggestion list is reused.
const suggestionTTL = 10 * time.Minute

// Dictionary is a word-list checker. Words must be added before the
// dictionary is shared; Check and Suggest are safe for concurrent use.
type Dictionary struct {
	lang  language.Tag
	words map[string]struct{}

	// suggestions caches Suggest results by folded word.
	suggestions *cache.Cache
}

// NewDictionary creates a dictionary for lang from a word list.
func NewDictionary(lang language.Tag, words ...string) *Dictionary {
	d := &Dictionary{
		lang:        lang,
		words:       make(map[string]struct{}, len(words)),
		suggestions: cache.New(suggestionTTL, 2*suggestionTTL),
	}
	for _, w := range words {
		d.Add(w)
	}
	return d
}

// LoadDictionary reads one word per line. Blank lines and lines starting
// with '#' are skipped.
func LoadDictionary(lang language.Tag, r io.Reader) (*Dictionary, error) {
	d := NewDictionary(lang)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return d, nil
}

// Add adds a word.
func (d *Dictionary) Add(word string) {
	if word = strings.TrimSpace(word); word != "" {
		d.words[d.fold(word)] = struct{}{}
		d.suggestions.Flush()
	}
}

// fold lower-cases s. Casers are stateful, so one is built per call.
func (d *Dictionary) fold(s string) string {
	return cases.Lower(d.lang).String(s)
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

// Language returns the dictionary language.
func (d *Dictionary) Language() language.Tag { return d.lang }

// Contains reports whether word is known, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[d.fold(word)]
	return ok
}

// Check implements Checker.
func (d *Dictionary) Check(ctx context.Context, texts []string) ([][]Finding, error) {
	out := make([][]Finding, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = d.checkText(text)
	}
	return out, nil
}

func (d *Dictionary) checkText(text string) []Finding {
	findings := []Finding{}
	offset := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if isWord(word) && !d.Contains(word) {
			findings = append(findings, Finding{
				Offset: offset,
				Text:   word,
				Subs:   d.Suggest(word),
			})
		}
		offset += len(word)
	}
	return findings
}

// isWord reports whether a segment is a checkable word: it contains a letter
// and no digits.
func isWord(s string) bool {
	letter := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			return false
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return letter
}

// Suggest returns known words within one edit of word, sorted.
func (d *Dictionary) Suggest(word string) []string {
	key := d.fold(word)
	if v, ok := d.suggestions.Get(key); ok {
		return slices.Clone(v.([]string))
	}

	target := []rune(key)
	var subs []string
	for w := range d.words {
		if withinOneEdit(target, []rune(w)) {
			subs = append(subs, w)
		}
	}
	slices.Sort(subs)
	if len(subs) > MaxSuggestions {
		subs = subs[:MaxSuggestions]
	}
	d.suggestions.SetDefault(key, subs)
	return slices.Clone(subs)
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion, substitution or adjacent transposition.
func withinOneEdit(a, b []rune) bool {
	if len(a) < len(b) {
		a, b = b, a
	}
	switch len(a) - len(b) {
	case 0:
		var diff []int
		for i := range a {
			if a[i] != b[i] {
				diff = append(diff, i)
				if len(diff) > 2 {
					return false
				}
			}
		}
		switch len(diff) {
		case 0, 1:
			return true
		case 2:
			i, j := diff[0], diff[1]
			return j == i+1 && a[i] == b[j] && a[j] == b[i]
		}
		return false
	case 1:
		i := 0
		for i < len(b) && a[i] == b[i] {
			i++
		}
		return slices.Equal(a[i+1:], b[i:])
	}
	return false
}
