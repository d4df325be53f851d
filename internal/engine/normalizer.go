package engine

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"safebite/internal/domain"
)

// punctuation is replaced by a space before words are split. Hyphens are
// handled per word so that "gluten-free" keeps its internal hyphen.
var punctuation = strings.NewReplacer(
	",", " ", "(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
	".", " ", ";", " ", ":", " ", "!", " ", "?", " ", "\"", " ", "*", " ",
	"•", " ", "·", " ", "/", " ", "\t", " ",
	"'", "", "’", "", "‘", "", "`", "",
)

// pluralExceptions end in a single "s" but are not plurals.
var pluralExceptions = map[string]bool{
	"gas":       true,
	"molasses":  true,
	"hummus":    true,
	"couscous":  true,
	"asparagus": true,
	"citrus":    true,
	"swiss":     true,
	"series":    true,
	"species":   true,
	"lens":      true,
	"hops":      true,
	"grits":     true,
	"schnapps":  true,
}

// stripMarks builds a fresh accent-stripping transformer; transform.Chain
// keeps internal state and must not be shared across goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold lowercases text, strips accents and punctuation and collapses
// whitespace. Plurals are left untouched.
func Fold(text string) string {
	folded, _, err := transform.String(stripMarks(), text)
	if err != nil {
		folded = text
	}
	folded = punctuation.Replace(strings.ToLower(folded))

	words := strings.Fields(folded)
	out := words[:0]
	for _, w := range words {
		w = strings.Trim(w, "-")
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// Normalize returns the canonical form used for allergen names, candidate
// tokens and evidence tokens alike.
func Normalize(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}
	folded := Fold(text)
	if folded == "" {
		return "", fmt.Errorf("%w: %q has no words", domain.ErrInvalidInput, text)
	}
	return singularWords(strings.Fields(folded)), nil
}

func singularWords(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = singular(w)
	}
	return strings.Join(out, " ")
}

// singular drops one trailing "s" when the remaining stem has at least four
// runes. Words ending in "ss" are never reduced, and neither are words whose
// stem would end in a hyphen; both keep the function idempotent.
func singular(word string) string {
	if !strings.HasSuffix(word, "s") {
		return word
	}
	if strings.HasSuffix(word, "ss") || strings.HasSuffix(word, "us") || strings.HasSuffix(word, "is") {
		return word
	}
	if pluralExceptions[word] {
		return word
	}
	stem := strings.TrimSuffix(word, "s")
	if len([]rune(stem)) < 4 || strings.HasSuffix(stem, "-") {
		return word
	}
	return stem
}
