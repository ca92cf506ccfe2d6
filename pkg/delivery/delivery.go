// Package delivery hands generated archives to whoever asked for them: an
// HTTP client as a download, or a directory on disk.
package delivery

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aretw0/shipyard/pkg/domain"
)

// ContentType is the media type of every artifact.
const ContentType = "application/zip"

// Deliverer presents an artifact to the requester. The bytes are passed
// through unchanged.
type Deliverer interface {
	Deliver(ctx context.Context, artifact domain.GeneratedArtifact) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, artifact domain.GeneratedArtifact) error

func (f DelivererFunc) Deliver(ctx context.Context, artifact domain.GeneratedArtifact) error {
	return f(ctx, artifact)
}

// ResponseDeliverer writes the artifact as an attachment download.
type ResponseDeliverer struct {
	w http.ResponseWriter
}

// NewResponseDeliverer creates a deliverer writing to w.
func NewResponseDeliverer(w http.ResponseWriter) *ResponseDeliverer {
	return &ResponseDeliverer{w: w}
}

func (d *ResponseDeliverer) Deliver(_ context.Context, artifact domain.GeneratedArtifact) error {
	h := d.w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(artifact.Bytes)))
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(artifact.Bytes); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// DirDeliverer saves artifacts into a directory. Files are written to a
// temporary name first and renamed into place.
type DirDeliverer struct {
	dir string

	mu   sync.Mutex
	last string
}

// NewDirDeliverer creates a deliverer writing into dir, created on demand.
func NewDirDeliverer(dir string) *DirDeliverer {
	return &DirDeliverer{dir: dir}
}

func (d *DirDeliverer) Deliver(ctx context.Context, artifact domain.GeneratedArtifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Base(artifact.Filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid artifact filename %q", artifact.Filename)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(artifact.Bytes); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	final := filepath.Join(d.dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	d.mu.Lock()
	d.last = final
	d.mu.Unlock()
	return nil
}

// LastPath returns the path of the most recently delivered artifact.
func (d *DirDeliverer) LastPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
