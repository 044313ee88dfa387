package metacommunity

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func TestBuildTableDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	table, err := buildTable(rng, []float64{100, 50, 30}, nil, nil, false, 3)
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, 3, table.OriginalCount())
	for i, want := range []string{"t0", "t1", "t2"} {
		r := table.Record(i)
		assert.Equal(t, want, r.ID)
		assert.GreaterOrEqual(t, r.TraitValue, 0.0)
		assert.Less(t, r.TraitValue, 1.0)
	}
	assert.Equal(t, 180.0, table.TotalAbundance())
	assert.InDelta(t, 1.0, table.ProbabilitySum(), probabilityTolerance)
}

func TestBuildTableProbabilities(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	table, err := buildTable(rng, []float64{100, 50}, []string{"t0", "t1"}, []float64{1.2, -0.3}, false, 2)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, table.Record(0).ImmigrationProbability, 1e-12)
	assert.InDelta(t, 1.0/3.0, table.Record(1).ImmigrationProbability, 1e-12)
	assert.Equal(t, 1.2, table.Record(0).TraitValue)
	assert.Equal(t, -0.3, table.Record(1).TraitValue)
}

func TestBuildTableRandomTraitOverride(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	table, err := buildTable(rng, []float64{10, 10}, []string{"a", "b"}, []float64{5.5, -5.5}, true, 2)
	require.NoError(t, err)

	for i := 0; i < table.Len(); i++ {
		trait := table.Record(i).TraitValue
		assert.GreaterOrEqual(t, trait, 0.0)
		assert.Less(t, trait, 1.0)
	}
}

func TestBuildTableErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	tests := []struct {
		name       string
		abundances []float64
		ids        []string
		traits     []float64
		contains   string
	}{
		{
			name:       "species count mismatch",
			abundances: []float64{1, 2, 3},
			ids:        []string{"t0", "t1"},
			traits:     []float64{0.1, 0.2},
			contains:   "mismatch",
		},
		{
			name:       "zero total abundance",
			abundances: []float64{0, 0},
			contains:   "total abundance is zero",
		},
		{
			name:       "no species",
			abundances: nil,
			contains:   "total abundance is zero",
		},
		{
			name:       "negative abundance",
			abundances: []float64{10, -1},
			contains:   "negative",
		},
		{
			name:       "duplicate ids",
			abundances: []float64{1, 2},
			ids:        []string{"t0", "t0"},
			traits:     []float64{0.1, 0.2},
			contains:   "duplicate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTable(rng, tt.abundances, tt.ids, tt.traits, false, 100)
			require.Error(t, err)
			assert.True(t, errors.IsGenerationError(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestBuildTableMismatchCitesBothCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	_, err := buildTable(rng, []float64{1, 2, 3}, []string{"t0", "t1"}, []float64{0.1, 0.2}, false, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100", "configured count")
	assert.Contains(t, err.Error(), "3", "realized count")
}

func TestAddSpecies(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	table, err := buildTable(rng, []float64{100, 50}, nil, nil, false, 2)
	require.NoError(t, err)
	before := table.Records()

	require.NoError(t, table.addSpecies("tNEW", 0.42))

	require.Equal(t, 3, table.Len())
	assert.Equal(t, 2, table.OriginalCount())

	added, ok := table.Lookup("tNEW")
	require.True(t, ok)
	assert.Equal(t, 0.0, added.Abundance)
	assert.Equal(t, 0.0, added.ImmigrationProbability)
	assert.Equal(t, 0.42, added.TraitValue)

	// Existing records and the original-row probability sum are untouched.
	for i, want := range before {
		assert.Equal(t, want, table.Record(i))
	}
	assert.InDelta(t, 1.0, table.ProbabilitySum(), probabilityTolerance)

	// Extensions grow monotonically.
	for i := 0; i < 10; i++ {
		require.NoError(t, table.addSpecies(fmt.Sprintf("new%d", i), float64(i)))
	}
	assert.Equal(t, 13, table.Len())
	assert.InDelta(t, 1.0, table.ProbabilitySum(), probabilityTolerance)
}

func TestAddSpeciesRejectsDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	table, err := buildTable(rng, []float64{100, 50}, nil, nil, false, 2)
	require.NoError(t, err)

	err = table.addSpecies("t0", 0.1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	require.NoError(t, table.addSpecies("tNEW", 0.1))
	err = table.addSpecies("tNEW", 0.2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestProbabilityInvariantLargePool(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	abundances := make([]float64, 5000)
	for i := range abundances {
		abundances[i] = rng.Float64() * 1000
	}
	table, err := buildTable(rng, abundances, nil, nil, false, 5000)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, table.ProbabilitySum(), probabilityTolerance)
	for _, r := range table.Records() {
		assert.GreaterOrEqual(t, r.ImmigrationProbability, 0.0)
	}
	assert.False(t, math.IsNaN(table.ProbabilitySum()))
}
