package delivery_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseDeliverer(t *testing.T) {
	rec := httptest.NewRecorder()
	art := domain.GeneratedArtifact{Filename: "chaos.zip", Bytes: []byte("PK\x03\x04raw")}

	err := delivery.NewResponseDeliverer(rec).Deliver(context.Background(), art)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=chaos.zip`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, art.Bytes, rec.Body.Bytes())
}

func TestDirDeliverer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := delivery.NewDirDeliverer(dir)
	art := domain.GeneratedArtifact{Filename: "full_map.zip", Bytes: []byte{0, 1, 2}}

	require.NoError(t, d.Deliver(context.Background(), art))

	got, err := os.ReadFile(filepath.Join(dir, "full_map.zip"))
	require.NoError(t, err)
	assert.Equal(t, art.Bytes, got)
	assert.Equal(t, filepath.Join(dir, "full_map.zip"), d.LastPath())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	t.Run("Strips Directories From Filename", func(t *testing.T) {
		require.NoError(t, d.Deliver(context.Background(), domain.GeneratedArtifact{Filename: "../escape.zip"}))
		_, err := os.Stat(filepath.Join(dir, "escape.zip"))
		assert.NoError(t, err)
	})
}
