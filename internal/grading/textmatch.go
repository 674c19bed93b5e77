package grading

import "strings"

var defaultStopWords = []string{"the", "a", "an", "is", "are", "was", "were", "be", "been", "being"}

// normalize trims surrounding whitespace and lowercases.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// clean drops stop words and collapses whitespace to single spaces.
func clean(s string, stop map[string]struct{}) string {
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if _, ok := stop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
