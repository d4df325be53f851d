package port

import "context"

// AliasEntry maps one alias to an allergen family.
type AliasEntry struct {
	Family string `db:"family"`
	Alias  string `db:"alias"`
}

// AliasRepository loads operator-maintained aliases that extend the
// built-in family table.
type AliasRepository interface {
	LoadAll(ctx context.Context) ([]AliasEntry, error)
}
