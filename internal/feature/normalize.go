package feature

import (
	"strings"
	"unicode"
)

// Normalize lowercases the utterance, strips control characters and
// collapses runs of whitespace into single spaces. The function is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // drop leading whitespace
	for _, r := range strings.ToLower(s) {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimRight(b.String(), " ")
}

// WordCount returns the number of whitespace-separated tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
