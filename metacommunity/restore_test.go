package metacommunity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func TestRestoreRoundTrip(t *testing.T) {
	pool, err := NewPool(KeywordUniform)
	require.NoError(t, err)
	require.NoError(t, pool.Params().Set(ParamSpeciesRichness, 4))

	rng := rand.New(rand.NewSource(42))
	require.NoError(t, pool.Generate(rng, GenerateOptions{}))
	require.NoError(t, pool.AddSpecies("local1", 0.5))

	restored, err := Restore(
		pool.Source().String(),
		pool.Table().Records(),
		pool.Table().OriginalCount(),
		pool.Table().Newick(),
		pool.Table().TreeHeight(),
		pool.FilteringOptimum(),
	)
	require.NoError(t, err)

	assert.Equal(t, StateExtended, restored.State())
	assert.True(t, restored.Ready())
	assert.Equal(t, pool.Table().Records(), restored.Table().Records())
	assert.Equal(t, 4, restored.Table().OriginalCount())

	// A restored pool serves migrants.
	id, _, err := restored.GetMigrant(rng)
	require.NoError(t, err)
	assert.NotEqual(t, "local1", id)
}

func TestRestoreValidation(t *testing.T) {
	good := []Record{
		{ID: "t0", Abundance: 75, ImmigrationProbability: 0.75, TraitValue: 0.1},
		{ID: "t1", Abundance: 25, ImmigrationProbability: 0.25, TraitValue: 0.2},
	}

	tests := []struct {
		name          string
		records       []Record
		originalCount int
	}{
		{"zero original count", good, 0},
		{"original count beyond records", good, 3},
		{
			"probability sum off",
			[]Record{
				{ID: "t0", Abundance: 75, ImmigrationProbability: 0.75},
				{ID: "t1", Abundance: 25, ImmigrationProbability: 0.35},
			},
			2,
		},
		{
			"duplicate ids",
			[]Record{
				{ID: "t0", Abundance: 75, ImmigrationProbability: 0.75},
				{ID: "t0", Abundance: 25, ImmigrationProbability: 0.25},
			},
			2,
		},
		{
			"extension with abundance",
			[]Record{
				{ID: "t0", Abundance: 100, ImmigrationProbability: 1},
				{ID: "x", Abundance: 5, ImmigrationProbability: 0},
			},
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(KeywordUniform, tt.records, tt.originalCount, "", 0, 1)
			require.Error(t, err)
			assert.True(t, errors.IsGenerationError(err), "got %v", err)
		})
	}

	restored, err := Restore(KeywordUniform, good, 2, "", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, StateGenerated, restored.State())
}
