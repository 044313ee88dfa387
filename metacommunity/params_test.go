package metacommunity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func TestParameterStoreDefaults(t *testing.T) {
	p := NewParameterStore()

	for name, want := range map[string]float64{
		ParamSpeciesRichness:    100,
		ParamTotalIndividuals:   750000,
		ParamSpeciationRate:     2,
		ParamDeathProportion:    0.7,
		ParamTraitRate:          2,
		ParamEcologicalStrength: 5,
	} {
		got, err := p.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, paramOrder, p.Names())
}

func TestParameterStoreSet(t *testing.T) {
	p := NewParameterStore()

	require.NoError(t, p.Set(ParamSpeciationRate, 3.5))
	v, err := p.Get(ParamSpeciationRate)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	// Numeric strings are accepted.
	require.NoError(t, p.Set(ParamTotalIndividuals, "500000"))
	j, err := p.GetInt(ParamTotalIndividuals)
	require.NoError(t, err)
	assert.Equal(t, 500000, j)

	// Integers too.
	require.NoError(t, p.Set(ParamSpeciesRichness, 50))
}

func TestParameterStoreSetErrors(t *testing.T) {
	p := NewParameterStore()

	tests := []struct {
		name  string
		param string
		value interface{}
	}{
		{"unknown parameter", "not_a_param", 1.0},
		{"non-numeric value", ParamSpeciationRate, struct{}{}},
		{"non-numeric string", ParamSpeciationRate, "fast"},
		{"richness below one", ParamSpeciesRichness, 0},
		{"death proportion above one", ParamDeathProportion, 1.5},
		{"inverted range", ParamSpeciationRate, []float64{3, 1}},
		{"three-element range", ParamSpeciationRate, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Set(tt.param, tt.value)
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestParameterStorePriorResolution(t *testing.T) {
	p := NewParameterStore()
	rng := rand.New(rand.NewSource(99))

	require.NoError(t, p.Set(ParamSpeciationRate, []float64{1.0, 3.0}))
	lo, hi, ok := p.Prior(ParamSpeciationRate)
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)

	// Repeated resampling always lands inside the inclusive range.
	for i := 0; i < 100; i++ {
		v, err := p.Resolve(rng, ParamSpeciationRate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 3.0)

		cur, err := p.Get(ParamSpeciationRate)
		require.NoError(t, err)
		assert.Equal(t, v, cur, "resolve stores the sampled value")
	}

	// Parameters without priors resolve to their fixed value unchanged.
	v, err := p.Resolve(rng, ParamTraitRate)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	// A scalar set clears the prior.
	require.NoError(t, p.Set(ParamSpeciationRate, 2.0))
	_, _, ok = p.Prior(ParamSpeciationRate)
	assert.False(t, ok)
}

func TestParameterStoreRangeStrings(t *testing.T) {
	p := NewParameterStore()

	require.NoError(t, p.Set(ParamSpeciationRate, "1.0-3.0"))
	lo, hi, ok := p.Prior(ParamSpeciationRate)
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)

	require.NoError(t, p.Set(ParamTraitRate, "0.5, 2"))
	lo, hi, ok = p.Prior(ParamTraitRate)
	require.True(t, ok)
	assert.Equal(t, 0.5, lo)
	assert.Equal(t, 2.0, hi)
}

func TestParameterStoreResampleAll(t *testing.T) {
	p := NewParameterStore()
	rng := rand.New(rand.NewSource(4))

	require.NoError(t, p.Set(ParamSpeciationRate, []float64{1, 3}))
	require.NoError(t, p.Set(ParamTraitRate, []float64{0.1, 0.2}))

	p.ResampleAll(rng)

	rate, err := p.Get(ParamSpeciationRate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rate, 1.0)
	assert.LessOrEqual(t, rate, 3.0)

	trait, err := p.Get(ParamTraitRate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, trait, 0.1)
	assert.LessOrEqual(t, trait, 0.2)

	// Fixed parameters are untouched.
	death, err := p.Get(ParamDeathProportion)
	require.NoError(t, err)
	assert.Equal(t, 0.7, death)
}
