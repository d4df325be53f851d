// Package engine matches noisy ingredient text against a user's allergens
// and produces verdicts and candidate allergens. Everything in it is
// stateless per call; the only blocking operation is the optional
// reasoning gateway consult in CheckSafety.
package engine

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"safebite/internal/domain"
	"safebite/internal/port"
)

// Defaults for Config fields left at zero.
const (
	DefaultAliasScore        = 0.9
	DefaultMinEvidenceTokens = 3
	DefaultGatewayTimeout    = 8 * time.Second
)

// Config tunes matching.
type Config struct {
	FuzzyThreshold    float64
	AliasScore        float64
	MinEvidenceTokens int
	MinTokenLength    int
	GatewayTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.AliasScore <= 0 {
		c.AliasScore = DefaultAliasScore
	}
	if c.MinEvidenceTokens <= 0 {
		c.MinEvidenceTokens = DefaultMinEvidenceTokens
	}
	if c.MinTokenLength <= 0 {
		c.MinTokenLength = DefaultMinTokenLength
	}
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = DefaultGatewayTimeout
	}
	return c
}

// Engine ties the normalizer, resolver, fuzzy matcher and tokenizer
// together. The gateway may be nil.
type Engine struct {
	cfg       Config
	resolver  *Resolver
	matcher   Matcher
	tokenizer Tokenizer
	gateway   port.ReasoningGateway
	logger    *zap.Logger
}

// New creates an Engine.
func New(cfg Config, resolver *Resolver, gateway port.ReasoningGateway, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		resolver:  resolver,
		matcher:   Matcher{Threshold: cfg.FuzzyThreshold},
		tokenizer: Tokenizer{MinLength: cfg.MinTokenLength},
		gateway:   gateway,
		logger:    logger.Named("engine"),
	}
}

// Resolver exposes the alias resolver the engine matches with.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Tokenize splits evidence text the same way checks and reconciliation do.
func (e *Engine) Tokenize(raw string) []domain.IngredientToken {
	return e.tokenizer.Tokenize(raw)
}

// vocabulary is the precomputed term list of one allergen.
type vocabulary struct {
	allergen domain.Allergen
	family   string
	terms    []Term
}

func (e *Engine) vocabularies(allergens []domain.Allergen) []vocabulary {
	out := make([]vocabulary, 0, len(allergens))
	for i := range allergens {
		fam, _ := e.resolver.CanonicalFamilyOf(allergens[i].CanonicalName)
		out = append(out, vocabulary{
			allergen: allergens[i],
			family:   fam,
			terms:    e.resolver.VocabularyOf(allergens[i].CanonicalName, allergens[i].Aliases),
		})
	}
	return out
}

// bestMatch returns the strongest match of one token against one
// allergen's vocabulary: EXACT beats ALIAS beats FUZZY, and only fuzzy
// scores at or above the threshold are reported. Compounds excluded for the
// allergen's family ("cocoa butter" for milk) are masked out first.
func (e *Engine) bestMatch(tok token, vocab vocabulary) (domain.MatchKind, float64, bool) {
	var (
		kind  domain.MatchKind
		score float64
		found bool
	)
	normalized := e.resolver.mask(tok.Normalized, vocab.family)
	if strings.TrimSpace(normalized) == "" {
		return kind, score, false
	}
	folded := e.resolver.mask(tok.folded, vocab.family)

	for _, term := range vocab.terms {
		if containsPhrase(normalized, term.Normalized) {
			k, s := domain.MatchKindAlias, e.cfg.AliasScore
			if term.Kind == domain.MatchKindExact {
				k, s = domain.MatchKindExact, 1.0
			}
			if !found || k.Priority() > kind.Priority() {
				kind, score, found = k, s, true
			}
		}
	}
	if found {
		return kind, score, true
	}

	for _, term := range vocab.terms {
		s := e.matcher.Best(normalized, folded, term)
		if e.matcher.Accept(s) && s > score {
			kind, score, found = domain.MatchKindFuzzy, s, true
		}
	}
	return kind, score, found
}
