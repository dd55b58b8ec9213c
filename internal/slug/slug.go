// Package slug turns names into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalid = regexp.MustCompile(`[^\w\s-]`)
	dashes  = regexp.MustCompile(`[-\s]+`)
	valid   = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Make folds accents to ASCII, drops anything that is not a word
// character, space or hyphen, lowercases, and joins words with hyphens.
// "Café Crème!" becomes "cafe-creme".
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = invalid.ReplaceAllString(strings.ToLower(folded), "")
	folded = dashes.ReplaceAllString(strings.TrimSpace(folded), "-")
	return strings.Trim(folded, "-_")
}

// Valid reports whether s is a non-empty slug.
func Valid(s string) bool {
	return valid.MatchString(s)
}
