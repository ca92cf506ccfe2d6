package ports

import (
	"context"

	"github.com/aretw0/shipyard/pkg/domain"
)

// UploadStore persists the documents uploaded to each session, in upload order.
type UploadStore interface {
	// Append adds entries after the ones already stored for the session.
	Append(ctx context.Context, sessionID string, entries ...domain.SourceEntry) error

	// List returns a copy of the session's entries. A session with no uploads
	// yields an empty collection, not an error.
	List(ctx context.Context, sessionID string) (domain.SourceCollection, error)

	// Clear removes every entry of the session.
	Clear(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of sessions that currently hold uploads.
	Sessions(ctx context.Context) ([]string, error)
}
