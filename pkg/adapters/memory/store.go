package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/shipyard/pkg/domain"
)

// Store implements ports.UploadStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.SourceEntry
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.SourceEntry),
	}
}

// Append stores entries after the session's existing ones.
func (s *Store) Append(ctx context.Context, sessionID string, entries ...domain.SourceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = append(s.data[sessionID], entries...)
	return nil
}

// List returns a copy of the session's entries.
func (s *Store) List(ctx context.Context, sessionID string) (domain.SourceCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copy on read so callers never share the backing array.
	return domain.NewSourceCollection(s.data[sessionID]...), nil
}

// Clear removes the session's entries.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sessions returns sessions that hold uploads, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
