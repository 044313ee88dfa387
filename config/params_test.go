package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/metacommunity"
)

func TestExportParams(t *testing.T) {
	store := metacommunity.NewParameterStore()
	require.NoError(t, store.Set(metacommunity.ParamSpeciesRichness, 50))
	require.NoError(t, store.Set(metacommunity.ParamSpeciationRate, []float64{1.0, 3.0}))

	out, err := ExportParams(store, false)
	require.NoError(t, err)

	var doc paramsDocument
	require.NoError(t, toml.Unmarshal(out, &doc))
	assert.Equal(t, "50", doc.Metacommunity.SpeciesRichness)
	assert.Equal(t, "750000", doc.Metacommunity.TotalIndividuals)
	assert.Equal(t, "0.7", doc.Metacommunity.DeathProportion)
}

func TestExportParamsFullWritesPriors(t *testing.T) {
	store := metacommunity.NewParameterStore()
	require.NoError(t, store.Set(metacommunity.ParamSpeciationRate, []float64{1.0, 3.0}))

	out, err := ExportParams(store, true)
	require.NoError(t, err)

	var doc paramsDocument
	require.NoError(t, toml.Unmarshal(out, &doc))
	assert.Equal(t, "1-3", doc.Metacommunity.SpeciationRate)

	// Parameters without priors keep their resolved value even with full.
	assert.Equal(t, "2", doc.Metacommunity.TraitRate)
}

func TestExportParamsRoundTripsThroughPool(t *testing.T) {
	store := metacommunity.NewParameterStore()
	require.NoError(t, store.Set(metacommunity.ParamSpeciationRate, []float64{1.0, 3.0}))

	out, err := ExportParams(store, true)
	require.NoError(t, err)

	var doc paramsDocument
	require.NoError(t, toml.Unmarshal(out, &doc))

	// The exported range string feeds straight back into a store.
	fresh := metacommunity.NewParameterStore()
	require.NoError(t, fresh.Set(metacommunity.ParamSpeciationRate, doc.Metacommunity.SpeciationRate))
	low, high, ok := fresh.Prior(metacommunity.ParamSpeciationRate)
	require.True(t, ok)
	assert.Equal(t, 1.0, low)
	assert.Equal(t, 3.0, high)
}
