package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/towndigest/towndigest/internal/seed"
	"github.com/towndigest/towndigest/tests/testutil"
)

const seedYAML = `editions:
  - name: Springfield Digest
    slug: springfield-ma
    state: MA
    description: Weekly civic newsletter
    aliases:
      - springfield@towndigest.example
      - springfield-news@towndigest.example
  - name: Shelbyville Digest
    slug: shelbyville-ma
    state: MA
    aliases:
      - shelbyville@towndigest.example
`

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAndApply(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	f, err := seed.Load(writeSeedFile(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, f.Editions, 2)

	result, err := seed.Apply(ctx, s, f)
	require.NoError(t, err)
	require.Equal(t, 2, result.EditionsCreated)
	require.Equal(t, 3, result.AliasesCreated)

	edition, err := s.GetEditionBySlug(ctx, "springfield-ma")
	require.NoError(t, err)
	require.Equal(t, "Springfield Digest", edition.Name)
	require.Equal(t, "MA", edition.State)

	alias, err := s.FindAliasByAddresses(ctx, []string{"shelbyville@towndigest.example"})
	require.NoError(t, err)
	require.NotNil(t, alias)
}

func TestApplyAbortsOnExistingSlug(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	f, err := seed.Load(writeSeedFile(t, seedYAML))
	require.NoError(t, err)

	_, err = seed.Apply(ctx, s, f)
	require.NoError(t, err)

	// A second apply of the same file must abort, not upsert.
	_, err = seed.Apply(ctx, s, f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestApplyAbortsOnExistingAlias(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	f, err := seed.Load(writeSeedFile(t, seedYAML))
	require.NoError(t, err)
	_, err = seed.Apply(ctx, s, f)
	require.NoError(t, err)

	conflict := &seed.File{Editions: []seed.EditionSeed{{
		Name:    "Capital City Digest",
		Slug:    "capital-city",
		State:   "MA",
		Aliases: []string{"springfield@towndigest.example"},
	}}}

	_, err = seed.Apply(ctx, s, conflict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestApplyRejectsMissingSlug(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	f := &seed.File{Editions: []seed.EditionSeed{{Name: "No Slug"}}}

	_, err := seed.Apply(ctx, s, f)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := seed.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
