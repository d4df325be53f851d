package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"safebite/internal/port"
)

type aliasRepo struct {
	db *sqlx.DB
}

// NewAliasRepo creates a new PostgreSQL-backed AliasRepository.
func NewAliasRepo(db *sqlx.DB) port.AliasRepository {
	return &aliasRepo{db: db}
}

func (r *aliasRepo) LoadAll(ctx context.Context) ([]port.AliasEntry, error) {
	var entries []port.AliasEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT family, alias FROM allergen_aliases ORDER BY family, alias`)
	if err != nil {
		return nil, fmt.Errorf("aliasRepo.LoadAll: %w", err)
	}
	return entries, nil
}
