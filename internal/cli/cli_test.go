package cli

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/shipyard/internal/config"
	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/uploads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestParseAssignments(t *testing.T) {
	fields, err := ParseAssignments([]string{"seed=42", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"seed": "42", "note": "a=b"}, fields)

	_, err = ParseAssignments([]string{"seed", "=1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"seed"`)
	assert.Contains(t, err.Error(), `"=1"`)
}

func TestCollectUploads(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"mod/b.txt":       "B",
		"mod/sub/a.txt":   "A",
		"mod/readme.md":   "skip",
		"single/ship.txt": "S",
	})

	docs, err := CollectUploads([]string{
		filepath.Join(dir, "single", "ship.txt"),
		filepath.Join(dir, "mod"),
	})
	require.NoError(t, err)
	var got []domain.SourceEntry
	for _, d := range docs {
		assert.True(t, uploads.IsText(d.MediaType), d.Path)
		got = append(got, domain.SourceEntry{Path: d.Path, Content: d.Content})
	}
	assert.Equal(t, []domain.SourceEntry{
		{Path: "ship.txt", Content: "S"},
		{Path: "b.txt", Content: "B"},
		{Path: "sub/a.txt", Content: "A"},
	}, got)

	_, err = CollectUploads([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestDetectMediaType(t *testing.T) {
	cases := []struct {
		path string
		data string
		text bool
	}{
		{"ships.txt", "ship Falcon", true},
		{"notes", "system Sol\n\tpos 0 0\n", true},
		{"icon.png", "\x89PNG\r\n\x1a\n", false},
		{"archive.zip", "PK\x03\x04", false},
		{"blob", "\x00\x01\x02\x03", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.text, uploads.IsText(DetectMediaType(c.path, []byte(c.data))), c.path)
	}
}

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher(config.BaselineConfig{})
	require.NoError(t, err)
	assert.Nil(t, f)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"es_stable_data_paths.txt": "x\n"})
	f, err = NewFetcher(config.BaselineConfig{Dir: dir})
	require.NoError(t, err)
	text, err := f.Fetch(context.Background(), "es_stable_data_paths.txt")
	require.NoError(t, err)
	assert.Equal(t, "x\n", text)

	_, err = NewFetcher(config.BaselineConfig{URL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestRunGenerate_FromDirectoryBaseline(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"es/es_stable_data_paths.txt": "es_stable_data/map.txt\n",
		"es/es_stable_data/map.txt":   "system Sol\n\tpos 0 0\n\tobject Earth\n",
		"mine/systems.txt":            "system Vega\n\tpos 10 10\n",
		"art/rigel.png":               "system Rigel\n\tpos 5 5\n",
	})

	cfg := config.Default()
	cfg.Baseline.Dir = filepath.Join(root, "es")
	cfg.GeneratorsFile = ""

	svc, closeFn, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	require.NoError(t, err)
	defer closeFn()

	outDir := filepath.Join(root, "out")
	path, err := RunGenerate(context.Background(), svc, GenerateOptions{
		Kind:            "full-map",
		Uploads:         []string{filepath.Join(root, "mine"), filepath.Join(root, "art", "rigel.png")},
		IncludeBaseline: true,
		OutDir:          outDir,
		Quiet:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "full_map.zip"), path)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var event string
	for _, f := range zr.File {
		if f.Name == "data/full_map_event.txt" {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			event = string(data)
		}
	}
	assert.Contains(t, event, "visit Sol")
	assert.Contains(t, event, "visit Vega")
	assert.NotContains(t, event, "Rigel")
	assert.Empty(t, svc.Sessions.List())
}

func TestRunGenerate_InvalidFields(t *testing.T) {
	cfg := config.Default()
	cfg.GeneratorsFile = ""
	svc, closeFn, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	require.NoError(t, err)
	defer closeFn()

	_, err = RunGenerate(context.Background(), svc, GenerateOptions{
		Kind:   "chaos",
		Set:    []string{"seed=abc"},
		OutDir: t.TempDir(),
		Quiet:  true,
	})
	assert.Error(t, err)
}

func TestNewService_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.GeneratorsFile = ""
	cfg.Redis.Addr = mr.Addr()
	svc, closeFn, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	require.NoError(t, err)
	defer closeFn()

	ctx := context.Background()
	sess, err := svc.Sessions.Start(ctx)
	require.NoError(t, err)
	_, err = sess.Uploads.Add(ctx, "a.txt", "text/plain", "x")
	require.NoError(t, err)

	assert.True(t, mr.Exists(config.DefaultRedisPrefix+sess.ID))
}

func TestNewService_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.GeneratorsFile = ""
	cfg.Redis.Addr = "127.0.0.1:1"
	_, _, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestNewService_ExternalGenerators(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"generators.yaml": `
generators:
  - name: mirror
    command: cat
    fields:
      radius: int[1,10]
`})
	cfg := config.Default()
	cfg.GeneratorsFile = filepath.Join(dir, "generators.yaml")

	svc, closeFn, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	require.NoError(t, err)
	defer closeFn()

	def, err := svc.Catalog.Lookup("mirror")
	require.NoError(t, err)
	assert.Equal(t, "mirror.zip", def.Filename)
	assert.Equal(t, []string{"radius"}, def.Fields())
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "off", "debug", "INFO", "warn", "error"} {
		l, err := NewLogger(level, "")
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
	_, err := NewLogger("loud", "text")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestNewService_FileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.GeneratorsFile = ""
	cfg.UploadsDir = dir

	svc, closeFn, err := NewService(context.Background(), cfg, logging.NewNop(), ServiceOptions{})
	require.NoError(t, err)
	defer closeFn()

	ctx := context.Background()
	sess, err := svc.Sessions.Start(ctx)
	require.NoError(t, err)
	_, err = sess.Uploads.Add(ctx, "a.txt", "text/plain", "x")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, sess.ID+".json"))
	assert.NoError(t, err)
}
