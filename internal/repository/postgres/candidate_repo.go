package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"safebite/internal/domain"
	"safebite/internal/port"
)

type candidateRepo struct {
	db *sqlx.DB
}

// NewCandidateRepo creates a new PostgreSQL-backed CandidateRepository.
func NewCandidateRepo(db *sqlx.DB) port.CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Upsert(ctx context.Context, candidates []domain.CandidateAllergen) ([]domain.CandidateAllergen, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	valueStrings := make([]string, 0, len(candidates))
	valueArgs := make([]interface{}, 0, len(candidates)*5)

	for i := range candidates {
		c := &candidates[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.FirstSeenAt.IsZero() {
			c.FirstSeenAt = now
		}
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, c.ID, c.OwnerID, c.NormalizedText, c.SourceDocumentID, c.FirstSeenAt)
	}

	query := fmt.Sprintf(
		`INSERT INTO candidate_allergens (id, owner_id, normalized_text, source_document_id, first_seen_at)
		 VALUES %s
		 ON CONFLICT (owner_id, normalized_text) DO UPDATE SET normalized_text = EXCLUDED.normalized_text
		 RETURNING id, owner_id, normalized_text, source_document_id, first_seen_at`,
		strings.Join(valueStrings, ", "))

	// The no-op update makes RETURNING yield rows that already existed.
	var stored []domain.CandidateAllergen
	if err := r.db.SelectContext(ctx, &stored, query, valueArgs...); err != nil {
		return nil, fmt.Errorf("candidateRepo.Upsert: %w", err)
	}
	return stored, nil
}

func (r *candidateRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error) {
	var candidates []domain.CandidateAllergen
	err := r.db.SelectContext(ctx, &candidates,
		`SELECT id, owner_id, normalized_text, source_document_id, first_seen_at
		 FROM candidate_allergens WHERE owner_id = $1
		 ORDER BY first_seen_at, normalized_text`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.ListByOwner: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepo) DeleteByNames(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM candidate_allergens WHERE owner_id = $1 AND normalized_text = ANY($2)",
		ownerID, pq.StringArray(names))
	if err != nil {
		return 0, fmt.Errorf("candidateRepo.DeleteByNames: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
