package metacommunity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archipelago-eco/archipelago/errors"
)

func TestResolveSourceKeywords(t *testing.T) {
	tests := []struct {
		in   string
		kind SourceKind
	}{
		{"uniform", SourceUniform},
		{"lognorm", SourceLogNormal},
		{"logser", SourceLogSeries},
	}
	for _, tt := range tests {
		src, err := ResolveSource(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.kind, src.Kind)
		assert.Equal(t, tt.in, src.String())
	}
}

func TestResolveSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "community.txt")
	require.NoError(t, os.WriteFile(path, []byte("100\n50\n"), 0o644))

	src, err := ResolveSource(path)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, src.Kind)
	assert.Equal(t, path, src.Path)
	assert.Equal(t, path, src.String())
}

func TestResolveSourceUnrecognized(t *testing.T) {
	_, err := ResolveSource("no-such-keyword-or-file")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "no-such-keyword-or-file")

	// Directories are not valid community files.
	_, err = ResolveSource(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}
