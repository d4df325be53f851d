package engine

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"gopkg.in/yaml.v3"

	"safebite/internal/domain"
	"safebite/internal/port"
)

//go:embed aliases.yaml
var defaultAliases []byte

// Table maps a family name to the surface forms of its aliases.
type Table map[string][]string

type tableFile struct {
	Families   Table `yaml:"families"`
	Exclusions Table `yaml:"exclusions"`
}

// ParseTable decodes a YAML alias table with a top-level "families" key.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing alias table: %w", err)
	}
	if f.Families == nil {
		return Table{}, nil
	}
	return f.Families, nil
}

// DefaultExclusions returns the built-in compound names that look like a
// family member but are not, keyed by family ("cocoa butter" for milk).
func DefaultExclusions() Table {
	var f tableFile
	if err := yaml.Unmarshal(defaultAliases, &f); err != nil {
		panic(fmt.Sprintf("embedded alias table is invalid: %v", err))
	}
	if f.Exclusions == nil {
		return Table{}
	}
	return f.Exclusions
}

// DefaultTable returns a copy of the built-in alias table.
func DefaultTable() Table {
	t, err := ParseTable(defaultAliases)
	if err != nil {
		panic(fmt.Sprintf("embedded alias table is invalid: %v", err))
	}
	return t
}

// LoadTableFile reads an alias table from disk.
func LoadTableFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias table %s: %w", path, err)
	}
	return ParseTable(data)
}

// TableFromEntries groups stored alias rows by family.
func TableFromEntries(entries []port.AliasEntry) Table {
	t := Table{}
	for _, e := range entries {
		t[e.Family] = append(t[e.Family], e.Alias)
	}
	return t
}

// Merge adds every alias of other into t.
func (t Table) Merge(other Table) {
	for family, aliases := range other {
		t[family] = append(t[family], aliases...)
	}
}

// Term is one vocabulary entry. Normalized drives exact and phrase
// matching; Folded keeps the surface plural so fuzzy matching can compare
// "peanutss" against "peanuts".
type Term struct {
	Normalized string
	Folded     string
	Kind       domain.MatchKind
}

// PhraseHit is a known alias found on word boundaries inside a text.
type PhraseHit struct {
	Phrase string
	Family string
	Start  int
	End    int
}

type family struct {
	name  string
	terms []Term
}

// Resolver answers alias questions over an immutable family table. It is
// safe for concurrent use.
type Resolver struct {
	families      map[string]*family
	aliasToFamily map[string]string
	exclusions    map[string][]string
	patterns      []string
	ac            *ahocorasick.Automaton
}

// DefaultResolver builds a resolver over the built-in table only.
func DefaultResolver() (*Resolver, error) {
	return NewResolver(DefaultTable())
}

// NewResolver normalizes the table and compiles the phrase automaton.
// When an alias is claimed by several families the alphabetically first
// family keeps it.
func NewResolver(t Table) (*Resolver, error) {
	r := &Resolver{
		families:      make(map[string]*family),
		aliasToFamily: make(map[string]string),
		exclusions:    normalizeExclusions(DefaultExclusions()),
	}

	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, rawName := range names {
		name, err := Normalize(rawName)
		if err != nil {
			return nil, fmt.Errorf("alias family %q: %w", rawName, err)
		}
		f, ok := r.families[name]
		if !ok {
			f = &family{name: name}
			r.families[name] = f
			f.terms = append(f.terms, Term{Normalized: name, Folded: Fold(rawName)})
		}
		for _, surface := range t[rawName] {
			n, err := Normalize(surface)
			if err != nil {
				continue
			}
			f.terms = append(f.terms, Term{Normalized: n, Folded: Fold(surface)})
		}
	}

	// Family names claim themselves before any alias is assigned.
	for _, name := range names {
		n, _ := Normalize(name)
		r.aliasToFamily[n] = n
	}
	for _, name := range names {
		n, _ := Normalize(name)
		f := r.families[n]
		f.terms = dedupeTerms(f.terms)
		for _, term := range f.terms {
			if _, taken := r.aliasToFamily[term.Normalized]; !taken {
				r.aliasToFamily[term.Normalized] = n
			}
		}
	}

	r.patterns = make([]string, 0, len(r.aliasToFamily))
	for phrase := range r.aliasToFamily {
		r.patterns = append(r.patterns, phrase)
	}
	sort.Strings(r.patterns)

	if len(r.patterns) > 0 {
		ac, err := ahocorasick.NewBuilder().
			AddStrings(r.patterns).
			SetMatchKind(ahocorasick.LeftmostLongest).
			SetPrefilter(true).
			Build()
		if err != nil {
			return nil, fmt.Errorf("building alias automaton: %w", err)
		}
		r.ac = ac
	}
	return r, nil
}

// normalizeExclusions keeps both the normalized and the folded spelling of
// every excluded phrase so plain and surface forms are masked alike.
func normalizeExclusions(t Table) map[string][]string {
	out := make(map[string][]string, len(t))
	for rawFamily, phrases := range t {
		fam, err := Normalize(rawFamily)
		if err != nil {
			continue
		}
		seen := map[string]bool{}
		for _, p := range out[fam] {
			seen[p] = true
		}
		for _, raw := range phrases {
			n, err := Normalize(raw)
			if err != nil {
				continue
			}
			for _, form := range []string{n, Fold(raw)} {
				if !seen[form] {
					seen[form] = true
					out[fam] = append(out[fam], form)
				}
			}
		}
	}
	return out
}

// mask blanks every whole-word occurrence of an excluded phrase of family
// in text. The result has the same length as text so byte offsets still
// line up.
func (r *Resolver) mask(text, family string) string {
	phrases := r.exclusions[family]
	if len(phrases) == 0 || text == "" {
		return text
	}
	b := []byte(text)
	for _, phrase := range phrases {
		for i := 0; i+len(phrase) <= len(text); {
			idx := strings.Index(text[i:], phrase)
			if idx < 0 {
				break
			}
			start := i + idx
			if onWordBoundary(text, start, start+len(phrase)) {
				for j := start; j < start+len(phrase); j++ {
					b[j] = ' '
				}
			}
			i = start + 1
		}
	}
	return string(b)
}

func dedupeTerms(terms []Term) []Term {
	seen := make(map[Term]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Families returns the sorted canonical family names.
func (r *Resolver) Families() []string {
	out := make([]string, 0, len(r.families))
	for name := range r.families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AliasesOf enumerates the normalized aliases of a family, excluding the
// family name itself. Unknown names return nil.
func (r *Resolver) AliasesOf(canonicalName string) []string {
	name, err := Normalize(canonicalName)
	if err != nil {
		return nil
	}
	f, ok := r.families[name]
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(f.terms))
	for _, t := range f.terms {
		if t.Normalized != name {
			set[t.Normalized] = true
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// CanonicalFamilyOf maps an ingredient name to its family. The second
// return is false when the name has no known synonym.
func (r *Resolver) CanonicalFamilyOf(token string) (string, bool) {
	n, err := Normalize(token)
	if err != nil {
		return "", false
	}
	f, ok := r.aliasToFamily[n]
	return f, ok
}

// FindPhrases reports every known alias that occurs on word boundaries in
// normalizedText.
func (r *Resolver) FindPhrases(normalizedText string) []PhraseHit {
	if r.ac == nil || normalizedText == "" {
		return nil
	}
	matches := r.ac.FindAllOverlapping([]byte(normalizedText))
	hits := make([]PhraseHit, 0, len(matches))
	seen := make(map[[2]int]bool, len(matches))
	for _, m := range matches {
		if m.PatternID < 0 || m.PatternID >= len(r.patterns) {
			continue
		}
		if !onWordBoundary(normalizedText, m.Start, m.End) {
			continue
		}
		key := [2]int{m.Start, m.End}
		if seen[key] {
			continue
		}
		seen[key] = true
		phrase := r.patterns[m.PatternID]
		hits = append(hits, PhraseHit{
			Phrase: phrase,
			Family: r.aliasToFamily[phrase],
			Start:  m.Start,
			End:    m.End,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].End > hits[j].End
	})
	return hits
}

// FamiliesIn resolves a free-form name to the families it mentions, either
// as a whole or through embedded alias phrases. Phrases inside an excluded
// compound of their family do not count.
func (r *Resolver) FamiliesIn(text string) []string {
	n, err := Normalize(text)
	if err != nil {
		return nil
	}
	set := map[string]bool{}
	if f, ok := r.aliasToFamily[n]; ok && strings.TrimSpace(r.mask(n, f)) != "" {
		set[f] = true
	}
	for _, hit := range r.FindPhrases(n) {
		if strings.TrimSpace(r.mask(n, hit.Family)[hit.Start:hit.End]) == "" {
			continue
		}
		set[hit.Family] = true
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// VocabularyOf builds the match vocabulary of a registered allergen: its
// canonical name as EXACT, and every alias of its family plus the stored
// aliases as ALIAS. A surface form that normalizes to the canonical name is
// kept as EXACT with its own folded spelling.
func (r *Resolver) VocabularyOf(canonicalName string, stored []string) []Term {
	terms := []Term{{Normalized: canonicalName, Folded: canonicalName, Kind: domain.MatchKindExact}}

	if fam, ok := r.aliasToFamily[canonicalName]; ok {
		for _, t := range r.families[fam].terms {
			t.Kind = domain.MatchKindAlias
			if t.Normalized == canonicalName {
				t.Kind = domain.MatchKindExact
			}
			terms = append(terms, t)
		}
	}
	for _, s := range stored {
		n, err := Normalize(s)
		if err != nil {
			continue
		}
		kind := domain.MatchKindAlias
		if n == canonicalName {
			kind = domain.MatchKindExact
		}
		terms = append(terms, Term{Normalized: n, Folded: Fold(s), Kind: kind})
	}
	return dedupeTerms(terms)
}

func onWordBoundary(text string, start, end int) bool {
	if start < 0 || end > len(text) || start >= end {
		return false
	}
	if start > 0 && text[start-1] != ' ' {
		return false
	}
	if end < len(text) && text[end] != ' ' {
		return false
	}
	return true
}

// containsPhrase reports whether phrase occurs in text as a run of whole
// words. Both arguments are normalized.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	if text == phrase {
		return true
	}
	for i := 0; i+len(phrase) <= len(text); {
		idx := strings.Index(text[i:], phrase)
		if idx < 0 {
			return false
		}
		start := i + idx
		if onWordBoundary(text, start, start+len(phrase)) {
			return true
		}
		i = start + 1
	}
	return false
}
