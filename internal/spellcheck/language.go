package spellcheck

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/dshills/inkwell/internal/tree"
)

// LanguageKey is the element property naming the element's language.
const LanguageKey = "lang"

// DefaultLanguage is used when no locale resolves.
var DefaultLanguage = language.English

// ResolveLanguage picks the session language from the document language,
// the element language and the environment locale, in that order. The first
// value that parses wins. Environment locales such as "en_US.UTF-8" are
// accepted.
func ResolveLanguage(document, element, env string) language.Tag {
	for _, s := range []string{document, element, envLocale(env)} {
		if s == "" {
			continue
		}
		if tag, err := language.Parse(s); err == nil && tag != language.Und {
			return tag
		}
	}
	return DefaultLanguage
}

// envLocale converts a POSIX locale to a BCP 47 candidate.
func envLocale(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// ElementLanguage returns the language property of the first root element
// that has one.
func ElementLanguage(doc *tree.Document) string {
	for _, root := range doc.Roots() {
		el := root.Element()
		if el == nil {
			continue
		}
		if v, ok := el.Property(LanguageKey); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
