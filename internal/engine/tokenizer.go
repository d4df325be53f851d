package engine

import (
	"strings"
	"unicode/utf8"

	"safebite/internal/domain"
)

// DefaultMinTokenLength drops single-character fragments.
const DefaultMinTokenLength = 2

var splitChars = map[rune]bool{
	'\n': true, '\r': true, ',': true, ';': true, ':': true,
	'(': true, ')': true, '[': true, ']': true,
	'•': true, '·': true, '*': true,
}

// boundaryPhrases are label boilerplate. They are removed and split the
// surrounding text, so whatever follows "may contain" is still extracted.
var boundaryPhrases = normalizePhrases(
	"may contain traces of",
	"may contain",
	"traces of",
	"ingredients",
	"contains",
	"allergy advice",
	"allergen information",
	"and/or",
	"and",
	"or",
	"&",
)

// normalizePhrases splits each phrase into normalized words, longest first.
func normalizePhrases(phrases ...string) [][]string {
	seen := map[string]bool{}
	var out [][]string
	for _, p := range phrases {
		n, err := Normalize(p)
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, strings.Fields(n))
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// token carries the folded spelling next to the public token so fuzzy
// matching can see surface plurals.
type token struct {
	domain.IngredientToken
	folded string
}

// Tokenizer splits label text into ingredient tokens.
type Tokenizer struct {
	MinLength int
}

// Tokenize splits raw text into deduplicated, normalized ingredient tokens
// in document order.
func (t Tokenizer) Tokenize(raw string) []domain.IngredientToken {
	toks := t.tokens(raw)
	out := make([]domain.IngredientToken, len(toks))
	for i, tok := range toks {
		out[i] = tok.IngredientToken
	}
	return out
}

func (t Tokenizer) tokens(raw string) []token {
	minLen := t.MinLength
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}

	var out []token
	seen := map[string]bool{}
	for _, piece := range splitPieces(raw) {
		folded := strings.Fields(Fold(piece))
		if len(folded) == 0 {
			continue
		}
		normalized := make([]string, len(folded))
		for i, w := range folded {
			normalized[i] = singular(w)
		}
		for _, seg := range cutBoundaries(normalized) {
			text := strings.Join(normalized[seg[0]:seg[1]], " ")
			if utf8.RuneCountInString(text) < minLen || seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, token{
				IngredientToken: domain.IngredientToken{
					Raw:        strings.TrimSpace(piece),
					Normalized: text,
					Position:   len(out),
				},
				folded: strings.Join(folded[seg[0]:seg[1]], " "),
			})
		}
	}
	return out
}

// splitPieces cuts on line breaks, list delimiters and bullet markers. A
// hyphen at the start of a line is a bullet as well.
func splitPieces(raw string) []string {
	var pieces []string
	var b strings.Builder
	lineStart := true
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			pieces = append(pieces, s)
		}
		b.Reset()
	}
	for _, r := range raw {
		if splitChars[r] {
			flush()
			lineStart = r == '\n' || r == '\r'
			continue
		}
		if lineStart {
			if r == ' ' || r == '\t' {
				continue
			}
			lineStart = false
			if r == '-' {
				continue
			}
		}
		b.WriteRune(r)
	}
	flush()
	return pieces
}

// cutBoundaries returns [start,end) word ranges left after removing every
// boundary phrase.
func cutBoundaries(words []string) [][2]int {
	var segs [][2]int
	start := 0
	for i := 0; i < len(words); {
		if n := boundaryAt(words, i); n > 0 {
			if i > start {
				segs = append(segs, [2]int{start, i})
			}
			i += n
			start = i
			continue
		}
		i++
	}
	if start < len(words) {
		segs = append(segs, [2]int{start, len(words)})
	}
	return segs
}

func boundaryAt(words []string, i int) int {
	for _, phrase := range boundaryPhrases {
		if i+len(phrase) > len(words) {
			continue
		}
		match := true
		for k, w := range phrase {
			if words[i+k] != w {
				match = false
				break
			}
		}
		if match {
			return len(phrase)
		}
	}
	return 0
}
