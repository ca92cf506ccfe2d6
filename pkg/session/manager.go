package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/ports"
	"github.com/aretw0/shipyard/pkg/uploads"
	"github.com/google/uuid"
)

// Session is the context of one user's generation requests.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Baseline   *baseline.Loader
	Uploads    *uploads.Registry
	Aggregator *pipeline.Aggregator
}

// Assemble implements pipeline.Assembler.
func (s *Session) Assemble(ctx context.Context, includeBaseline bool) (domain.SourceCollection, error) {
	return s.Aggregator.Assemble(ctx, includeBaseline)
}

// Manager creates and tracks sessions. Safe for concurrent use.
type Manager struct {
	store   ports.UploadStore
	fetcher ports.Fetcher

	baselineOpts []baseline.Option
	shared       *baseline.Loader

	mu       sync.Mutex
	sessions map[string]*Session

	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager and the sessions it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithBaselineOptions configures the baseline loader of every new session.
func WithBaselineOptions(opts ...baseline.Option) Option {
	return func(m *Manager) {
		m.baselineOpts = append(m.baselineOpts, opts...)
	}
}

// WithSharedBaseline makes every session use loader instead of its own.
// The dataset is then fetched once per process rather than once per session.
func WithSharedBaseline(loader *baseline.Loader) Option {
	return func(m *Manager) {
		m.shared = loader
	}
}

// NewManager creates a Manager storing uploads in store and reading the
// baseline through fetcher.
func NewManager(store ports.UploadStore, fetcher ports.Fetcher, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		fetcher:  fetcher,
		sessions: make(map[string]*Session),
		logger:   logging.NewNop(), // Default to no-op
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newSession(id string) *Session {
	loader := m.shared
	if loader == nil {
		opts := append([]baseline.Option{baseline.WithLogger(m.logger)}, m.baselineOpts...)
		loader = baseline.NewLoader(m.fetcher, opts...)
	}
	up := uploads.NewRegistry(id, m.store, uploads.WithLogger(m.logger))
	return &Session{
		ID:         id,
		CreatedAt:  m.now(),
		Baseline:   loader,
		Uploads:    up,
		Aggregator: pipeline.NewAggregator(loader, up),
	}
}

// Start creates a session with a fresh random ID.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := m.newSession(uuid.NewString())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("session started", "session_id", s.ID)
	return s, nil
}

// Load returns an existing session. Sessions that hold uploads in the store
// but are unknown to this process are restored. Otherwise the error wraps
// domain.ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	stored, err := m.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	for _, id := range stored {
		if id == sessionID {
			return m.adopt(sessionID), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
}

// LoadOrStart returns the session with sessionID, creating it if needed.
// An empty ID starts a session with a random one.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return m.Start(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.adopt(sessionID), nil
}

// adopt returns the tracked session for id, registering a new one if absent.
func (m *Manager) adopt(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := m.newSession(id)
	m.sessions[id] = s
	return s
}

// Delete discards a session and its uploads. The baseline it latched, if
// shared, is kept.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if err := m.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session uploads: %w", err)
	}
	if !ok {
		m.logger.Debug("deleted untracked session", "session_id", sessionID)
	}
	return nil
}

// List returns the IDs of tracked sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
