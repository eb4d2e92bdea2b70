package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// normalize strips combining marks (Arabic harakat, Latin accents) and
// folds case so that plain queries match vocalized text.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.TrimSpace(folder.String(result))
}

// contains reports whether text contains an already normalized query.
func contains(text, normalizedQuery string) bool {
	if text == "" || normalizedQuery == "" {
		return false
	}
	return strings.Contains(normalize(text), normalizedQuery)
}
