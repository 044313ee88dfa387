package metacommunity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "community.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCommunityFile_FullFormat(t *testing.T) {
	path := writeTempFile(t, "10.0\n0.5\nt0 1.2 100\nt1 -0.3 50\n")

	fc, err := parseCommunityFile(path)
	require.NoError(t, err)

	assert.True(t, fc.fullFormat)
	assert.Equal(t, 10.0, fc.treeHeight)
	assert.Equal(t, 0.5, fc.traitRate)
	assert.Equal(t, []string{"t0", "t1"}, fc.ids)
	assert.Equal(t, []float64{1.2, -0.3}, fc.traits)
	assert.Equal(t, []float64{100, 50}, fc.abundances)
}

func TestParseCommunityFile_LegacyFormat(t *testing.T) {
	path := writeTempFile(t, "100\n50\n30\n")

	fc, err := parseCommunityFile(path)
	require.NoError(t, err)

	assert.False(t, fc.fullFormat)
	assert.Equal(t, []float64{100, 50, 30}, fc.abundances)
	assert.Empty(t, fc.ids)
	assert.Empty(t, fc.traits)
}

func TestParseCommunityFile_LegacyTwoLines(t *testing.T) {
	// Too short for the full format's two header lines plus rows, so the
	// legacy parse takes over.
	path := writeTempFile(t, "100\n50\n")

	fc, err := parseCommunityFile(path)
	require.NoError(t, err)
	assert.False(t, fc.fullFormat)
	assert.Equal(t, []float64{100, 50}, fc.abundances)
}

func TestParseCommunityFile_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"non-numeric lines", "alpha\nbeta\ngamma\n"},
		{"full rows with bad trait", "10.0\n0.5\nt0 x 100\n"},
		{"fractional legacy abundance", "10.5\n50.2\n"},
		{"negative legacy abundance", "100\n-50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.content)
			_, err := parseCommunityFile(path)
			require.Error(t, err)
			assert.True(t, errors.IsGenerationError(err), "got %v", err)
			assert.Contains(t, err.Error(), path, "error names the file")
		})
	}
}

func TestParseCommunityFile_Missing(t *testing.T) {
	_, err := parseCommunityFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsGenerationError(err))
}
