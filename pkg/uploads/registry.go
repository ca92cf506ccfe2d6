// Package uploads holds the documents a user uploaded to a session.
package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/observability"
	"github.com/aretw0/shipyard/pkg/ports"
)

// Registry is the upload area of one session, backed by a ports.UploadStore.
type Registry struct {
	sessionID string
	store     ports.UploadStore
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates the registry of sessionID.
func NewRegistry(sessionID string, store ports.UploadStore, opts ...Option) *Registry {
	r := &Registry{
		sessionID: sessionID,
		store:     store,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsText reports whether mediaType declares a text/* document.
// Parameters such as charset are ignored; a missing or malformed type is not text.
func IsText(mediaType string) bool {
	if strings.TrimSpace(mediaType) == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/")
}

// Add stores a document when its media type is text/*. Other documents are
// ignored silently and reported as not accepted.
func (r *Registry) Add(ctx context.Context, path, mediaType, content string) (bool, error) {
	if !IsText(mediaType) {
		observability.RecordUpload(false)
		r.logger.Debug("upload ignored", "session", r.sessionID, "path", path, "media_type", mediaType)
		return false, nil
	}
	if err := r.store.Append(ctx, r.sessionID, domain.SourceEntry{Path: path, Content: content}); err != nil {
		return false, fmt.Errorf("failed to store upload %s: %w", path, err)
	}
	observability.RecordUpload(true)
	return true, nil
}

// Document is one uploaded file awaiting the text/* check.
type Document struct {
	Path      string
	MediaType string
	Content   string
}

// AddAll stores the text/* documents of docs with a single store append, so
// either every accepted document is kept or none is. It returns the paths
// kept and ignored, in the order given.
func (r *Registry) AddAll(ctx context.Context, docs ...Document) (accepted, ignored []string, err error) {
	accepted, ignored = []string{}, []string{}
	entries := make([]domain.SourceEntry, 0, len(docs))
	for _, d := range docs {
		if !IsText(d.MediaType) {
			ignored = append(ignored, d.Path)
			continue
		}
		accepted = append(accepted, d.Path)
		entries = append(entries, domain.SourceEntry{Path: d.Path, Content: d.Content})
	}
	if len(entries) > 0 {
		if err := r.store.Append(ctx, r.sessionID, entries...); err != nil {
			return nil, nil, fmt.Errorf("failed to store %d uploads: %w", len(entries), err)
		}
	}
	for range accepted {
		observability.RecordUpload(true)
	}
	for _, path := range ignored {
		observability.RecordUpload(false)
		r.logger.Debug("upload ignored", "session", r.sessionID, "path", path)
	}
	return accepted, ignored, nil
}

// Clear removes every uploaded document.
func (r *Registry) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx, r.sessionID); err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the uploaded documents in upload order.
func (r *Registry) Snapshot(ctx context.Context) (domain.SourceCollection, error) {
	c, err := r.store.List(ctx, r.sessionID)
	if err != nil {
		return domain.SourceCollection{}, fmt.Errorf("failed to read uploads: %w", err)
	}
	return c, nil
}
