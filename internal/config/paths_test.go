package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	t.Run("basic path resolution", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)
		require.NotNil(t, paths)

		assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "ephe"), paths.EphemerisDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
	})

	t.Run("consistent calls return same paths", func(t *testing.T) {
		paths1, err1 := GetPaths()
		require.NoError(t, err1)
		paths2, err2 := GetPaths()
		require.NoError(t, err2)

		assert.Equal(t, paths1, paths2)
	})
}

func TestPaths_Resolve(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "opt", "astro")
	p := pathsFor(base)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative", "ephe", filepath.Join(base, "ephe")},
		{"nested relative", filepath.Join("data", "ephe"), filepath.Join(base, "data", "ephe")},
		{"absolute", filepath.Join(string(filepath.Separator), "usr", "share", "ephe"), filepath.Join(string(filepath.Separator), "usr", "share", "ephe")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.in))
		})
	}
}

func TestDefaultEphemerisPath(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)
	assert.Equal(t, paths.EphemerisDir, DefaultEphemerisPath())
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "VSOP87B.ear")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
