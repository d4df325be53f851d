package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"safebite/internal/domain"
	"safebite/internal/port"
)

// NoAllergensExplanation is attached to verdicts computed against an empty set.
const NoAllergensExplanation = "no allergens registered"

// Evaluate computes the local verdict. It never consults the gateway and is
// a deterministic function of its inputs.
func (e *Engine) Evaluate(evidence string, allergens []domain.Allergen) (*domain.Verdict, error) {
	if strings.TrimSpace(evidence) == "" {
		return nil, fmt.Errorf("%w: evidence text is empty", domain.ErrInvalidInput)
	}
	toks := e.tokenizer.tokens(evidence)

	if len(allergens) == 0 {
		return &domain.Verdict{
			Label:       domain.VerdictSafe,
			Matches:     []domain.MatchResult{},
			Explanation: NoAllergensExplanation,
			TokenCount:  len(toks),
		}, nil
	}

	vocabs := e.vocabularies(allergens)
	matches := make([]domain.MatchResult, 0)
	for _, tok := range toks {
		for _, vocab := range vocabs {
			kind, score, ok := e.bestMatch(tok, vocab)
			if !ok {
				continue
			}
			matches = append(matches, domain.MatchResult{
				AllergenID:   vocab.allergen.ID,
				AllergenName: vocab.allergen.CanonicalName,
				Token:        tok.Normalized,
				Position:     tok.Position,
				Kind:         kind,
				Score:        score,
			})
		}
	}
	sortMatches(matches)

	v := &domain.Verdict{
		Matches:    matches,
		TokenCount: len(toks),
	}
	switch {
	case len(matches) > 0:
		v.Label = domain.VerdictUnsafe
		v.Confidence = matches[0].Score
	case len(toks) >= e.cfg.MinEvidenceTokens:
		v.Label = domain.VerdictSafe
	default:
		v.Label = domain.VerdictUncertain
	}
	return v, nil
}

// CheckSafety evaluates locally and, when the result is UNCERTAIN against a
// non-empty allergen set, consults the reasoning gateway within the
// configured timeout. Gateway failures leave the verdict UNCERTAIN with no
// explanation. Advice can only escalate to UNSAFE, and only for allergen
// names the gateway lists that belong to the set.
func (e *Engine) CheckSafety(ctx context.Context, evidence string, allergens []domain.Allergen) (*domain.Verdict, error) {
	v, err := e.Evaluate(evidence, allergens)
	if err != nil {
		return nil, err
	}
	if v.Label != domain.VerdictUncertain || len(allergens) == 0 || e.gateway == nil {
		return v, nil
	}

	names := make([]string, len(allergens))
	for i := range allergens {
		names[i] = allergens[i].CanonicalName
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.GatewayTimeout)
	defer cancel()

	out, err := e.gateway.Explain(callCtx, port.ExplainInput{
		Product:   strings.TrimSpace(evidence),
		Allergens: names,
	})
	if err != nil || out == nil {
		if err == nil {
			err = domain.ErrGatewayUnavailable
		}
		e.logger.Warn("reasoning gateway unavailable, keeping local verdict",
			zap.Error(err),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
		)
		return v, nil
	}

	v.Explanation = strings.TrimSpace(out.Explanation)
	if external := e.externalMatches(out.Allergens, allergens); len(external) > 0 {
		v.Matches = append(v.Matches, external...)
		sortMatches(v.Matches)
		v.Label = domain.VerdictUnsafe
		v.Confidence = v.Matches[0].Score
	}
	return v, nil
}

// externalMatches maps names surfaced by the gateway onto allergens of the
// set. A name counts when it normalizes to the allergen's name or one of its
// aliases, or when it mentions the allergen's family.
func (e *Engine) externalMatches(surfaced []string, allergens []domain.Allergen) []domain.MatchResult {
	if len(surfaced) == 0 {
		return nil
	}
	vocabs := e.vocabularies(allergens)
	seen := map[int]bool{}
	var out []domain.MatchResult

	for _, name := range surfaced {
		n, err := Normalize(name)
		if err != nil {
			continue
		}
		families := e.resolver.FamiliesIn(n)
		for i, vocab := range vocabs {
			if seen[i] || !mentions(n, families, vocab, e.resolver) {
				continue
			}
			seen[i] = true
			out = append(out, domain.MatchResult{
				AllergenID:   vocab.allergen.ID,
				AllergenName: vocab.allergen.CanonicalName,
				Token:        n,
				Position:     -1,
				Kind:         domain.MatchKindExternal,
				Score:        1.0,
			})
		}
	}
	return out
}

func mentions(name string, families []string, vocab vocabulary, r *Resolver) bool {
	masked := r.mask(name, vocab.family)
	for _, term := range vocab.terms {
		if containsPhrase(masked, term.Normalized) {
			return true
		}
	}
	if vocab.family == "" {
		return false
	}
	for _, f := range families {
		if f == vocab.family {
			return true
		}
	}
	return false
}

// sortMatches orders by score descending, then allergen name, token
// position and match kind so equal inputs always produce equal output.
func sortMatches(matches []domain.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.AllergenName != b.AllergenName {
			return a.AllergenName < b.AllergenName
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Kind.Priority() != b.Kind.Priority() {
			return a.Kind.Priority() > b.Kind.Priority()
		}
		return a.Token < b.Token
	})
}
