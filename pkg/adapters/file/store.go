package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/shipyard/pkg/domain"
)

// Store implements ports.UploadStore on the local filesystem.
// Each session's uploads are kept as a JSON array in <BasePath>/<id>.json.
type Store struct {
	BasePath string
	mu       sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".shipyard/uploads".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".shipyard", "uploads")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

// Append adds entries to the session's uploads, rewriting its file atomically.
func (s *Store) Append(ctx context.Context, sessionID string, entries ...domain.SourceEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := s.path(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := readEntries(dest)
	if err != nil {
		return err
	}
	return s.write(sessionID, dest, append(current, entries...))
}

// List returns the session's uploads in insertion order.
func (s *Store) List(ctx context.Context, sessionID string) (domain.SourceCollection, error) {
	if err := ctx.Err(); err != nil {
		return domain.SourceCollection{}, err
	}
	dest, err := s.path(sessionID)
	if err != nil {
		return domain.SourceCollection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := readEntries(dest)
	if err != nil {
		return domain.SourceCollection{}, err
	}
	return domain.NewSourceCollection(entries...), nil
}

// Clear removes the session file.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	dest, err := s.path(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete uploads file: %w", err)
	}
	return nil
}

// Sessions returns the IDs of sessions holding uploads, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(sessions)
	return sessions, nil
}

func readEntries(path string) ([]domain.SourceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read uploads file: %w", err)
	}
	var entries []domain.SourceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal uploads: %w", err)
	}
	return entries, nil
}

// write replaces dest through a synced temp file and a rename.
func (s *Store) write(sessionID, dest string, entries []domain.SourceEntry) error {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure uploads directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal uploads: %w", err)
	}

	// Same directory as dest, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to replace uploads file: %w", err)
	}
	return nil
}
