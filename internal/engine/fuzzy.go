package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity accepted as a FUZZY match.
const DefaultFuzzyThreshold = 0.82

// Similarity is one minus the Levenshtein distance divided by the longer
// rune length. It is symmetric and 1 for identical strings.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

// Matcher accepts similarity scores at or above Threshold.
type Matcher struct {
	Threshold float64
}

// Accept reports whether score counts as a match.
func (m Matcher) Accept(score float64) bool {
	return score >= m.Threshold
}

// Best compares a term against every word window of the token that has the
// same word count as the term, on both normalized and folded spellings,
// and returns the highest similarity. Tokens shorter than the term are
// compared whole.
func (m Matcher) Best(tokenNormalized, tokenFolded string, term Term) float64 {
	best := windowBest(tokenNormalized, term.Normalized)
	if s := windowBest(tokenFolded, term.Folded); s > best {
		best = s
	}
	return best
}

func windowBest(token, phrase string) float64 {
	if token == "" || phrase == "" {
		return 0
	}
	words := strings.Fields(token)
	size := len(strings.Fields(phrase))
	if len(words) <= size {
		return Similarity(token, phrase)
	}
	best := 0.0
	for i := 0; i+size <= len(words); i++ {
		if s := Similarity(strings.Join(words[i:i+size], " "), phrase); s > best {
			best = s
		}
	}
	return best
}
