package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"react", "", 5},
		{"", "node", 4},
		{"react", "react", 0},
		{"react", "reacts", 1},
		{"kitten", "sitting", 3},
		{"javascript", "typescript", 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("go", "go"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))

	// "react" vs "reacts": distance 1, longest 6
	assert.InDelta(t, 1.0-1.0/6.0, Similarity("react", "reacts"), 1e-9)
}

func TestFuzzyMatch(t *testing.T) {
	// Case and whitespace are ignored.
	assert.True(t, FuzzyMatch("  React ", "react", ScoreThreshold))

	// "reactjs" vs "react": distance 2 over 7 runes, similarity ~0.714.
	// Passes the looser filter threshold, fails the score threshold.
	assert.False(t, FuzzyMatch("reactjs", "react", ScoreThreshold))
	assert.True(t, FuzzyMatch("reactjs", "react", FilterThreshold))

	assert.False(t, FuzzyMatch("python", "golang", FilterThreshold))
}
