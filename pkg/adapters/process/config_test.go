package process_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/shipyard/pkg/adapters/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGenerators_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generators:
  - name: mirror
    command: ./mirror
    args: ["--fast"]
    env:
      MODE: strict
    description: Mirrors the galaxy
    fields:
      seed: seed
      radius: int[1,10]
      include: "[glob]"
      timeout: duration
  - command: ignored-without-name
`), 0o644))

	gens, err := process.LoadGenerators(path)
	require.NoError(t, err)
	require.Len(t, gens, 1)

	g := gens[0]
	assert.Equal(t, "mirror", g.Name)
	assert.Equal(t, "mirror.zip", g.Filename)
	assert.Equal(t, []string{"--fast"}, g.Args)
	assert.Equal(t, "strict", g.Environment["MODE"])
	assert.Equal(t, "int[1,10]", g.Fields["radius"].Name())
	assert.Equal(t, "[glob]", g.Fields["include"].Name())
	assert.NoError(t, g.Fields["include"].Validate([]any{"data/**/*.txt"}))
	assert.Error(t, g.Fields["include"].Validate([]any{"data/[oops"}))
	assert.Error(t, g.Fields["timeout"].Validate("-5s"))
}

func TestLoadGenerators_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generators.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"generators":[{"name":"a","command":"a","filename":"out.zip"}]}`), 0o644))

	gens, err := process.LoadGenerators(path)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "out.zip", gens[0].Filename)
}

func TestLoadGenerators_MissingFile(t *testing.T) {
	gens, err := process.LoadGenerators(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, gens)
}

func TestParseGenerators_Errors(t *testing.T) {
	_, err := process.ParseGenerators([]byte("generators:\n  - name: a\n    command: x\n  - name: a\n    command: y\n"), false)
	assert.ErrorContains(t, err, "duplicate generator")

	_, err = process.ParseGenerators([]byte("generators:\n  - name: a\n"), false)
	assert.ErrorContains(t, err, "command is required")

	_, err = process.ParseGenerators([]byte(`{"generators":[{"name":"a","command":"a","fields":{"x":"complex"}}]}`), true)
	assert.ErrorContains(t, err, "unsupported type")
}
