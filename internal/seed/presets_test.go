package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePreset_BuiltIn(t *testing.T) {
	opts, err := ResolvePreset("medium")
	require.NoError(t, err)
	assert.Equal(t, 50, opts.Users)
	assert.Equal(t, []string{"large", "medium", "small"}, PresetNames())
}

func TestLoadPresetFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("fills defaults", func(t *testing.T) {
		path := filepath.Join(dir, "tiny.yml")
		require.NoError(t, os.WriteFile(path, []byte("users: 3\npostsPerUser: 1\nfastHash: true\n"), 0o600))

		opts, err := ResolvePreset(path)
		require.NoError(t, err)
		assert.Equal(t, 3, opts.Users)
		assert.Equal(t, 1, opts.PostsPerUser)
		assert.True(t, opts.FastHash)
		assert.Equal(t, Presets["small"].MaxDays, opts.MaxDays)
		assert.Equal(t, Presets["small"].BatchSize, opts.BatchSize)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParsePreset([]byte("userz: 3\n"))
		assert.Error(t, err)
	})

	t.Run("bad ratio", func(t *testing.T) {
		_, err := ParsePreset([]byte("imageRatio: 1.5\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ResolvePreset(filepath.Join(dir, "nope.yml"))
		assert.Error(t, err)
	})
}
