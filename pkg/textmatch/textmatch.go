// Package textmatch provides edit-distance based fuzzy string matching
// used for skill comparison in search scoring and filtering.
package textmatch

import "strings"

const (
	// ScoreThreshold is the default similarity cutoff when fuzzy matching
	// contributes to a relevance score.
	ScoreThreshold = 0.8

	// FilterThreshold is the default similarity cutoff for hard skill
	// filtering. Looser than ScoreThreshold: filters keep near-miss
	// spellings that scoring still ranks low.
	FilterThreshold = 0.7
)

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns a normalized similarity in [0,1]:
// 1 - distance/max(len(a), len(b)). Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

// FuzzyMatch reports whether a and b are at least threshold similar.
// Comparison is case-insensitive and ignores surrounding whitespace.
func FuzzyMatch(a, b string, threshold float64) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return Similarity(a, b) >= threshold
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
