package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"safebite/internal/domain"
)

// Reconcile splits extracted label text into tokens and sorts them into
// allergens the owner already has and new candidates for review. Candidates
// keep document order; every token that is neither boilerplate nor below
// the minimum length ends up in exactly one of the two outputs. OwnerID of
// the candidates is left for the caller to set.
func (e *Engine) Reconcile(rawText string, existing []domain.Allergen, sourceDocID *uuid.UUID, now time.Time) (*domain.Reconciliation, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: extracted text is empty", domain.ErrInvalidInput)
	}

	vocabs := e.vocabularies(existing)
	known := map[string]domain.Allergen{}
	result := &domain.Reconciliation{
		Candidates:   []domain.CandidateAllergen{},
		AlreadyKnown: []domain.Allergen{},
	}

	for _, tok := range e.tokenizer.tokens(rawText) {
		matched := false
		for _, vocab := range vocabs {
			if _, _, ok := e.bestMatch(tok, vocab); ok {
				matched = true
				known[vocab.allergen.CanonicalName] = vocab.allergen
			}
		}
		if matched {
			continue
		}
		result.Candidates = append(result.Candidates, domain.CandidateAllergen{
			ID:               uuid.New(),
			NormalizedText:   tok.Normalized,
			SourceDocumentID: sourceDocID,
			FirstSeenAt:      now,
		})
	}

	for _, a := range known {
		result.AlreadyKnown = append(result.AlreadyKnown, a)
	}
	sort.Slice(result.AlreadyKnown, func(i, j int) bool {
		return result.AlreadyKnown[i].CanonicalName < result.AlreadyKnown[j].CanonicalName
	})
	return result, nil
}
