package domain

import (
	"time"

	"github.com/google/uuid"
)

// Allergen is a registered allergen owned by a user. CanonicalName is
// normalized (lowercase, trimmed, singular) and unique per owner.
type Allergen struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	CanonicalName string    `db:"canonical_name" json:"canonical_name"`
	Aliases       []string  `db:"-" json:"aliases"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IngredientToken is one normalized piece of evidence text. Never persisted.
type IngredientToken struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Position   int    `json:"position"`
}

// CandidateAllergen is an unconfirmed allergen extracted from a document,
// held for user review until confirmed or discarded.
type CandidateAllergen struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OwnerID          uuid.UUID  `db:"owner_id" json:"owner_id"`
	NormalizedText   string     `db:"normalized_text" json:"normalized_text"`
	SourceDocumentID *uuid.UUID `db:"source_document_id" json:"source_document_id"`
	FirstSeenAt      time.Time  `db:"first_seen_at" json:"first_seen_at"`
}

// MatchResult links one evidence token to one allergen.
type MatchResult struct {
	AllergenID   uuid.UUID `json:"allergen_id"`
	AllergenName string    `json:"allergen_name"`
	Token        string    `json:"ingredient_token"`
	Position     int       `json:"position"`
	Kind         MatchKind `json:"match_kind"`
	Score        float64   `json:"score"`
}

// Verdict is the result of a safety check. Matches are ordered by
// descending score, then allergen name.
type Verdict struct {
	Label       VerdictLabel  `json:"label"`
	Matches     []MatchResult `json:"matches"`
	Explanation string        `json:"explanation,omitempty"`
	Confidence  float64       `json:"confidence"`
	TokenCount  int           `json:"token_count"`
}

// Reconciliation is the outcome of reconciling extracted document text
// against an owner's allergens.
type Reconciliation struct {
	Candidates   []CandidateAllergen `json:"candidates"`
	AlreadyKnown []Allergen          `json:"already_known"`
}

// LabelDocument stores metadata about an uploaded product label.
type LabelDocument struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	OwnerID      uuid.UUID      `db:"owner_id" json:"owner_id"`
	OriginalName string         `db:"original_name" json:"original_name"`
	FileType     FileType       `db:"file_type" json:"file_type"`
	FileSize     int64          `db:"file_size" json:"file_size"`
	S3Bucket     string         `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string         `db:"s3_key" json:"s3_key"`
	ContentType  string         `db:"content_type" json:"content_type"`
	Status       DocumentStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
