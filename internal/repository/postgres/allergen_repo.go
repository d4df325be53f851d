package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"safebite/internal/domain"
	"safebite/internal/port"
)

// allergenRow mirrors the allergens table; aliases live in a text[] column.
type allergenRow struct {
	domain.Allergen
	Aliases pq.StringArray `db:"aliases"`
}

func (r allergenRow) toDomain() domain.Allergen {
	a := r.Allergen
	a.Aliases = []string(r.Aliases)
	if a.Aliases == nil {
		a.Aliases = []string{}
	}
	return a
}

type allergenRepo struct {
	db *sqlx.DB
}

// NewAllergenRepo creates a new PostgreSQL-backed AllergenRepository.
func NewAllergenRepo(db *sqlx.DB) port.AllergenRepository {
	return &allergenRepo{db: db}
}

func (r *allergenRepo) Create(ctx context.Context, allergen *domain.Allergen) error {
	if allergen.ID == uuid.Nil {
		allergen.ID = uuid.New()
	}
	now := time.Now().UTC()
	allergen.CreatedAt = now
	allergen.UpdatedAt = now

	query := `INSERT INTO allergens (id, owner_id, canonical_name, aliases, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		allergen.ID, allergen.OwnerID, allergen.CanonicalName, pq.StringArray(allergen.Aliases),
		allergen.CreatedAt, allergen.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("allergenRepo.Create: %w", err)
	}
	return nil
}

func (r *allergenRepo) GetByName(ctx context.Context, ownerID uuid.UUID, canonicalName string) (*domain.Allergen, error) {
	var row allergenRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, owner_id, canonical_name, aliases, created_at, updated_at
		 FROM allergens WHERE owner_id = $1 AND canonical_name = $2`,
		ownerID, canonicalName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("allergenRepo.GetByName: %w", err)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *allergenRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Allergen, error) {
	var rows []allergenRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, owner_id, canonical_name, aliases, created_at, updated_at
		 FROM allergens WHERE owner_id = $1 ORDER BY canonical_name`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("allergenRepo.ListByOwner: %w", err)
	}
	out := make([]domain.Allergen, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *allergenRepo) Rename(ctx context.Context, allergen *domain.Allergen) error {
	allergen.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE allergens SET canonical_name = $1, aliases = $2, updated_at = $3
		 WHERE id = $4 AND owner_id = $5`,
		allergen.CanonicalName, pq.StringArray(allergen.Aliases), allergen.UpdatedAt, allergen.ID, allergen.OwnerID)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("allergenRepo.Rename: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *allergenRepo) Delete(ctx context.Context, ownerID uuid.UUID, canonicalName string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM allergens WHERE owner_id = $1 AND canonical_name = $2", ownerID, canonicalName)
	if err != nil {
		return fmt.Errorf("allergenRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
