package baseline_test

import (
	"testing"
	"testing/fstest"

	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"map.txt":                    {Data: []byte("")},
		"human/ships.txt":            {Data: []byte("")},
		"human/readme.md":            {Data: []byte("")},
		"_deprecated/old.txt":        {Data: []byte("")},
		"pug/_deprecated/legacy.txt": {Data: []byte("")},
		"commodities.txt":            {Data: []byte("")},
	}

	t.Run("Default Options", func(t *testing.T) {
		got, err := baseline.BuildManifest(fsys, baseline.DefaultManifestOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{
			"es_stable_data/commodities.txt",
			"es_stable_data/human/ships.txt",
			"es_stable_data/map.txt",
		}, got)
	})

	t.Run("Custom Patterns", func(t *testing.T) {
		got, err := baseline.BuildManifest(fsys, baseline.ManifestOptions{
			Include: []string{"human/**"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"human/readme.md", "human/ships.txt"}, got)
	})

	t.Run("Invalid Pattern", func(t *testing.T) {
		_, err := baseline.BuildManifest(fsys, baseline.ManifestOptions{Include: []string{"[unclosed"}})
		assert.Error(t, err)
	})
}

func TestFormatAndParseManifest(t *testing.T) {
	entries := []string{"a.txt", "b/c.txt"}
	text := baseline.FormatManifest(entries)
	assert.Equal(t, "a.txt\nb/c.txt\n", text)
	assert.Equal(t, entries, baseline.ParseManifest(text))
	assert.Empty(t, baseline.ParseManifest("\n  \n"))
	assert.Equal(t, "", baseline.FormatManifest(nil))
}
