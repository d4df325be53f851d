package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/port"
)

func newResolver(t *testing.T) *engine.Resolver {
	t.Helper()
	r, err := engine.DefaultResolver()
	require.NoError(t, err)
	return r
}

func TestResolver_AliasesOf(t *testing.T) {
	r := newResolver(t)

	aliases := r.AliasesOf(" Milk ")

	assert.Contains(t, aliases, "whey")
	assert.Contains(t, aliases, "casein")
	assert.Contains(t, aliases, "lactose")
	assert.NotContains(t, aliases, "milk")
	assert.IsNonDecreasing(t, aliases)
}

func TestResolver_AliasesOf_Unknown(t *testing.T) {
	r := newResolver(t)

	assert.Nil(t, r.AliasesOf("strawberry"))
	assert.Nil(t, r.AliasesOf(""))
}

func TestResolver_CanonicalFamilyOf(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		token  string
		family string
		ok     bool
	}{
		{"Casein", "milk", true},
		{"Arachis Oil", "peanut", true},
		{"peanuts", "peanut", true},
		{"tree nuts", "tree nuts", true},
		{"Sulfites", "sulphite", true},
		{"water", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			family, ok := r.CanonicalFamilyOf(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.family, family)
		})
	}
}

func TestResolver_FindPhrases(t *testing.T) {
	r := newResolver(t)

	hits := r.FindPhrases("whey powder")

	require.NotEmpty(t, hits)
	assert.Equal(t, engine.PhraseHit{Phrase: "whey", Family: "milk", Start: 0, End: 4}, hits[0])
}

func TestResolver_FindPhrases_RespectsWordBoundaries(t *testing.T) {
	r := newResolver(t)

	for _, hit := range r.FindPhrases("wheyish powder") {
		assert.NotEqual(t, "whey", hit.Phrase)
	}
	assert.Nil(t, r.FindPhrases(""))
}

func TestResolver_FamiliesIn(t *testing.T) {
	r := newResolver(t)

	assert.Equal(t, []string{"soy"}, r.FamiliesIn("Soy Lecithin"))
	assert.Empty(t, r.FamiliesIn("granola bar"))
}

func TestResolver_FamiliesIn_SkipsExcludedCompounds(t *testing.T) {
	r := newResolver(t)

	assert.Empty(t, r.FamiliesIn("Cocoa Butter"))
	assert.Empty(t, r.FamiliesIn("cream of tartar"))
	assert.Equal(t, []string{"milk"}, r.FamiliesIn("butter"))
	assert.Equal(t, []string{"peanut"}, r.FamiliesIn("peanut butter"))
}

func TestResolver_MergedTable(t *testing.T) {
	table := engine.DefaultTable()
	table.Merge(engine.TableFromEntries([]port.AliasEntry{
		{Family: "Milk", Alias: "Kefir"},
		{Family: "buckwheat", Alias: "soba"},
	}))

	r, err := engine.NewResolver(table)
	require.NoError(t, err)

	family, ok := r.CanonicalFamilyOf("kefir")
	assert.True(t, ok)
	assert.Equal(t, "milk", family)

	family, ok = r.CanonicalFamilyOf("Soba")
	assert.True(t, ok)
	assert.Equal(t, "buckwheat", family)
	assert.Contains(t, r.Families(), "buckwheat")
}

func TestResolver_SharedAliasGoesToFirstFamily(t *testing.T) {
	r, err := engine.NewResolver(engine.Table{
		"b family": {"shared"},
		"a family": {"shared"},
	})
	require.NoError(t, err)

	family, ok := r.CanonicalFamilyOf("shared")
	assert.True(t, ok)
	assert.Equal(t, "a family", family)
}

func TestResolver_VocabularyOf_KeepsSurfacePlural(t *testing.T) {
	r := newResolver(t)

	terms := r.VocabularyOf("peanut", []string{"Monkey Nuts"})

	assert.Contains(t, terms, engine.Term{Normalized: "peanut", Folded: "peanut", Kind: domain.MatchKindExact})
	assert.Contains(t, terms, engine.Term{Normalized: "peanut", Folded: "peanuts", Kind: domain.MatchKindExact})
	assert.Contains(t, terms, engine.Term{Normalized: "arachis oil", Folded: "arachis oil", Kind: domain.MatchKindAlias})
	assert.Contains(t, terms, engine.Term{Normalized: "monkey nuts", Folded: "monkey nuts", Kind: domain.MatchKindAlias})
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families:\n  buckwheat:\n    - soba\n"), 0o600))

	table, err := engine.LoadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"soba"}, table["buckwheat"])

	_, err = engine.LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseTable_Invalid(t *testing.T) {
	_, err := engine.ParseTable([]byte("families: [1, 2"))
	assert.Error(t, err)
}
