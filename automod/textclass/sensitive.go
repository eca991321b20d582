package textclass

import (
	"strings"

	"golang.org/x/text/cases"
)

// Returns the first word (as configured) found in any of the fields, matching case-insensitively as a substring, or an empty string.
//
// Fields are checked in order, so callers pass text, author, mail.
func MatchSensitiveWord(fields []string, words []string) string {
	if len(words) == 0 {
		return ""
	}
	// a Caser holds state; needs to be created per call to be safe for concurrent use
	fold := cases.Fold()
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = fold.String(strings.TrimSpace(w))
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		hay := fold.String(field)
		for i, w := range folded {
			if w == "" {
				continue
			}
			if strings.Contains(hay, w) {
				return words[i]
			}
		}
	}
	return ""
}

func HasSensitiveWord(fields []string, words []string) bool {
	return MatchSensitiveWord(fields, words) != ""
}
