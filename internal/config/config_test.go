package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "shipyard.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "shipyard.yaml", `
addr: ":9090"
baseline:
  url: https://example.com/data/
redis:
  addr: localhost:6379
  ttl: 24h
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://example.com/data/", cfg.Baseline.URL)
	assert.Equal(t, DefaultManifest, cfg.Baseline.Manifest)
	assert.Equal(t, DefaultConcurrency, cfg.Baseline.Concurrency)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, DefaultRedisPrefix, cfg.Redis.Prefix)

	ttl, err := cfg.Redis.TTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "shipyard.toml", `
log_level = "debug"
log_format = "json"
max_upload_bytes = 1048576
output_dir = "out"

[baseline]
dir = "./es"
concurrency = 2
timeout = "5s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "./es", cfg.Baseline.Dir)
	assert.Equal(t, 2, cfg.Baseline.Concurrency)

	timeout, err := cfg.Baseline.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "shipyard.json", `{"generators_file": "gens.json", "uploads_dir": "up", "redis": {"db": 3}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gens.json", cfg.GeneratorsFile)
	assert.Equal(t, "up", cfg.UploadsDir)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, DefaultAddr, cfg.Addr)
}

func TestLoad_ReportsAllInvalidValues(t *testing.T) {
	path := writeFile(t, "shipyard.yaml", `
baseline:
  concurrency: 0
  timeout: soon
redis:
  ttl: -1h
log_level: loud
log_format: xml
max_upload_bytes: -5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "log_format")
	assert.Contains(t, err.Error(), "max_upload_bytes")
	assert.Contains(t, err.Error(), "baseline.concurrency")
	assert.Contains(t, err.Error(), "baseline.timeout")
	assert.Contains(t, err.Error(), "redis.ttl")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "shipyard.toml", "addr = ")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}
