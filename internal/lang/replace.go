// Package lang implements the text normalization and language-ratio routing
// used to decide whether and in which direction outgoing text is translated.
package lang

import "strings"

// Pair is one find/replace substitution applied to outgoing text.
type Pair struct {
	Find    string
	Replace string
}

// Apply runs every pair against text in order, replacing all literal
// occurrences. No regex semantics.
func Apply(text string, pairs []Pair) string {
	for _, p := range pairs {
		if p.Find == "" {
			continue
		}
		text = strings.ReplaceAll(text, p.Find, p.Replace)
	}
	return text
}
