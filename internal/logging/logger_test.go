package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]struct {
		level   slog.Level
		enabled bool
	}{
		"":      {0, false},
		"off":   {0, false},
		"None":  {0, false},
		"debug": {slog.LevelDebug, true},
		"INFO":  {slog.LevelInfo, true},
		"warn":  {slog.LevelWarn, true},
		"error": {slog.LevelError, true},
	}
	for raw, want := range cases {
		level, enabled, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want.enabled, enabled, raw)
		assert.Equal(t, want.level, level, raw)
	}

	_, _, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `"loud"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNew_JSONRenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, WithFormat(FormatJSON), WithWriter(&buf))

	logger.Debug("hidden")
	logger.Warn("upload rejected", "error", errors.New("too large"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "upload rejected", rec["msg"])
	assert.Equal(t, "too large", rec["err"])
	assert.NotContains(t, rec, "error")
}

func TestFromSettings(t *testing.T) {
	var buf bytes.Buffer
	logger, err := FromSettings("off", "json", WithWriter(&buf))
	require.NoError(t, err)
	logger.Error("dropped")
	assert.Zero(t, buf.Len())

	logger, err = FromSettings("debug", "text", WithWriter(&buf))
	require.NoError(t, err)
	logger.Debug("baseline latched", "documents", 3)
	assert.Contains(t, buf.String(), "documents=3")

	_, err = FromSettings("debug", "yaml")
	assert.Error(t, err)
}
