package phylo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func TestParseResponse(t *testing.T) {
	out := []byte("phylo/1.2.0\n" +
		"((t1:1,t2:1):0.5,t3:1.5):0;\n" +
		"120 40 7\n" +
		"t1 0.25\n" +
		"t2 -1.5\n" +
		"t3 0.9\n")

	resp, err := parseResponse(out)
	require.NoError(t, err)

	assert.Equal(t, "((t1:1,t2:1):0.5,t3:1.5):0;", resp.Newick)
	assert.Equal(t, []float64{120, 40, 7}, resp.Abundances)
	assert.Equal(t, []string{"t1", "t2", "t3"}, resp.Order)
	assert.Equal(t, -1.5, resp.Traits["t2"])
	assert.Nil(t, resp.Tree, "external responses carry only the serialization")
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"empty output", ""},
		{"missing header", "((t1:1):0;\n1\nt1 0.5\n"},
		{"bad version", "phylo/not-a-version\nnewick\n1\nt1 0.5\n"},
		{"unsupported major version", "phylo/2.0.0\nnewick\n1\nt1 0.5\n"},
		{"bad abundance", "phylo/1.0.0\nnewick\none two\nt1 0.5\n"},
		{"bad trait line", "phylo/1.0.0\nnewick\n1 2\nt1\n"},
		{"bad trait value", "phylo/1.0.0\nnewick\n1 2\nt1 abc\n"},
		{"duplicate id", "phylo/1.0.0\nnewick\n1 2\nt1 0.5\nt1 0.7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse([]byte(tt.out))
			require.Error(t, err)
			assert.True(t, errors.IsGenerationError(err), "got %v", err)
		})
	}
}

func TestExternalSimulator_BadCommand(t *testing.T) {
	sim := &ExternalSimulator{Command: ""}
	_, err := sim.Simulate(nil, Request{J: 1000, S: 10, SpeciationRate: 2, DeathProportion: 0.5, TraitRate: 1})
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))

	sim = &ExternalSimulator{Command: "unbalanced 'quote"}
	_, err = sim.Simulate(nil, Request{J: 1000, S: 10, SpeciationRate: 2, DeathProportion: 0.5, TraitRate: 1})
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestExternalSimulator_CommandFailure(t *testing.T) {
	sim := &ExternalSimulator{Command: "false"}
	_, err := sim.Simulate(nil, Request{J: 1000, S: 10, SpeciationRate: 2, DeathProportion: 0.5, TraitRate: 1})
	require.Error(t, err)
	assert.True(t, errors.IsGenerationError(err))
}
