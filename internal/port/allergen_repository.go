package port

import (
	"context"

	"github.com/google/uuid"

	"safebite/internal/domain"
)

// AllergenRepository defines the contract for allergen persistence.
// Canonical names are unique per owner; Create and Rename return
// domain.ErrConflict when that invariant would be violated.
type AllergenRepository interface {
	Create(ctx context.Context, allergen *domain.Allergen) error
	GetByName(ctx context.Context, ownerID uuid.UUID, canonicalName string) (*domain.Allergen, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error)
	Rename(ctx context.Context, allergen *domain.Allergen) error
	Delete(ctx context.Context, ownerID uuid.UUID, canonicalName string) error
}

// CandidateRepository defines the contract for the pending-review set of
// candidate allergens.
type CandidateRepository interface {
	// Upsert inserts candidates and returns the stored rows. Rows that
	// already exist keep their id, source document and first_seen_at.
	Upsert(ctx context.Context, candidates []domain.CandidateAllergen) ([]domain.CandidateAllergen, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error)
	DeleteByNames(ctx context.Context, ownerID uuid.UUID, names []string) (int, error)
}

// LabelDocumentRepository defines the contract for uploaded label metadata.
type LabelDocumentRepository interface {
	Create(ctx context.Context, doc *domain.LabelDocument) error
	UpdateStatus(ctx context.Context, ownerID, docID uuid.UUID, status domain.DocumentStatus) error
}
