package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/shipyard/pkg/adapters/memory"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureFetcher() *memory.Fetcher {
	return memory.NewFetcherFromEntries(baseline.DefaultManifest,
		domain.SourceEntry{Path: "es_stable_data/map.txt", Content: "system Sol"},
	)
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), fixtureFetcher())

	s, err := mgr.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []string{s.ID}, mgr.List())

	loaded, err := mgr.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, loaded)

	_, err = s.Uploads.Add(ctx, "mine.txt", "text/plain", "ship Mine")
	require.NoError(t, err)

	got, err := s.Assemble(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"es_stable_data/map.txt", "mine.txt"}, got.Paths())

	require.NoError(t, mgr.Delete(ctx, s.ID))
	_, err = mgr.Load(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, mgr.List())
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), fixtureFetcher())

	a, err := mgr.Start(ctx)
	require.NoError(t, err)
	b, err := mgr.Start(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = a.Uploads.Add(ctx, "a.txt", "text/plain", "A")
	require.NoError(t, err)

	snap, err := b.Uploads.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.NotSame(t, a.Baseline, b.Baseline)
}

func TestManager_ClearKeepsBaselineLatch(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), fixtureFetcher())

	s, err := mgr.Start(ctx)
	require.NoError(t, err)

	s.Baseline.EnsureLoaded(ctx)
	require.Equal(t, baseline.Loaded, s.Baseline.State())

	require.NoError(t, s.Uploads.Clear(ctx))
	assert.Equal(t, baseline.Loaded, s.Baseline.State())
}

func TestManager_SharedBaseline(t *testing.T) {
	ctx := context.Background()
	shared := baseline.NewLoader(fixtureFetcher())
	mgr := session.NewManager(memory.NewStore(), nil, session.WithSharedBaseline(shared))

	a, err := mgr.Start(ctx)
	require.NoError(t, err)
	b, err := mgr.Start(ctx)
	require.NoError(t, err)

	assert.Same(t, shared, a.Baseline)
	assert.Same(t, shared, b.Baseline)
}

func TestManager_RestoresStoredSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Append(ctx, "from-before", domain.SourceEntry{Path: "old.txt", Content: "old"}))

	mgr := session.NewManager(store, fixtureFetcher())

	s, err := mgr.Load(ctx, "from-before")
	require.NoError(t, err)

	snap, err := s.Uploads.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.txt"}, snap.Paths())
}

func TestManager_LoadOrStart(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), fixtureFetcher())

	var wg sync.WaitGroup
	results := make([]*session.Session, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := mgr.LoadOrStart(ctx, "cli")
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}

	fresh, err := mgr.LoadOrStart(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, "cli", fresh.ID)
}
