package action

import (
	"slices"
	"strings"
	"unicode"
)

// Match is an action item that matched a search query.
type Match struct {
	Item

	// Score ranks the match; higher is better.
	Score int

	// Positions are the rune indices of the matched title characters.
	Positions []int
}

// Search ranks items whose title contains the query's characters in order,
// ignoring case. An empty query returns every item in registration order.
// A limit of zero or less returns all matches.
func Search(items []Item, query string, limit int) []Match {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []Match
	if query == "" {
		out = make([]Match, len(items))
		for i, it := range items {
			out[i] = Match{Item: it}
		}
		return truncate(out, limit)
	}

	q := []rune(query)
	for _, it := range items {
		positions := subsequence(q, it.Title)
		if positions == nil {
			continue
		}
		out = append(out, Match{Item: it, Score: score(q, it.Title, positions), Positions: positions})
	}

	// Equal scores keep registration order.
	slices.SortStableFunc(out, func(a, b Match) int {
		return b.Score - a.Score
	})
	return truncate(out, limit)
}

func truncate(m []Match, limit int) []Match {
	if limit <= 0 || limit >= len(m) {
		return m
	}
	return m[:limit]
}

// subsequence greedily matches q against title left to right and returns the
// matched rune indices, or nil when some query rune is missing.
func subsequence(q []rune, title string) []int {
	text := []rune(strings.ToLower(title))
	positions := make([]int, 0, len(q))
	qi := 0
	for i := 0; i < len(text) && qi < len(q); i++ {
		if text[i] == q[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(q) {
		return nil
	}
	return positions
}

// Scoring weights.
const (
	baseScore        = 100
	consecutiveBonus = 20
	boundaryBonus    = 15
	prefixBonus      = 25
	exactPrefixBonus = 50
	gapPenalty       = 2
	shortTitleLength = 20
)

func score(q []rune, title string, positions []int) int {
	original := []rune(title)
	s := baseScore

	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, p := range positions {
		if isBoundary(original, p) {
			s += boundaryBonus
		}
	}

	first, last := positions[0], positions[len(positions)-1]
	if first == 0 {
		s += prefixBonus
	}
	if gap := last - first - len(positions) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	s -= first

	if n := len(original); n < shortTitleLength {
		s += shortTitleLength - n
	}
	if strings.HasPrefix(strings.ToLower(title), string(q)) {
		s += exactPrefixBonus
	}
	return max(s, 1)
}

// isBoundary reports whether the rune at i starts a word.
func isBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := runes[i-1], runes[i]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
