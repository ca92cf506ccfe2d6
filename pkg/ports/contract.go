package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunUploadStoreContract runs a suite of tests to verify that an UploadStore
// implementation adheres to the defined interface contract.
func RunUploadStoreContract(t *testing.T, store UploadStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Append and List", func(t *testing.T) {
		defer func() { _ = store.Clear(ctx, sessionID) }()

		err := store.Append(ctx, sessionID,
			domain.SourceEntry{Path: "map.txt", Content: "system Sol"},
			domain.SourceEntry{Path: "ships.txt", Content: "ship Shuttle"},
		)
		require.NoError(t, err, "Append should not return error")

		err = store.Append(ctx, sessionID, domain.SourceEntry{Path: "map.txt", Content: "system Vega"})
		require.NoError(t, err)

		got, err := store.List(ctx, sessionID)
		require.NoError(t, err, "List should not return error")
		assert.Equal(t, []string{"map.txt", "ships.txt", "map.txt"}, got.Paths(), "order and duplicates are preserved")
		assert.Equal(t, []string{"system Sol", "ship Shuttle", "system Vega"}, got.Contents())
	})

	t.Run("List Unknown Session", func(t *testing.T) {
		got, err := store.List(ctx, "non-existent-"+sessionID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Len())
	})

	t.Run("List Returns A Copy", func(t *testing.T) {
		defer func() { _ = store.Clear(ctx, sessionID) }()

		require.NoError(t, store.Append(ctx, sessionID, domain.SourceEntry{Path: "a.txt", Content: "A"}))
		got, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		got.Append(domain.SourceEntry{Path: "b.txt"})

		again, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Len())
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID, domain.SourceEntry{Path: "a.txt", Content: "A"}))

		err := store.Clear(ctx, sessionID)
		require.NoError(t, err, "Clear should not return error")

		got, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Len(), "List after Clear should be empty")

		require.NoError(t, store.Clear(ctx, sessionID), "Clear is idempotent")
	})

	t.Run("Sessions Are Isolated", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		defer func() {
			_ = store.Clear(ctx, id1)
			_ = store.Clear(ctx, id2)
		}()

		require.NoError(t, store.Append(ctx, id1, domain.SourceEntry{Path: "one.txt"}))
		require.NoError(t, store.Append(ctx, id2, domain.SourceEntry{Path: "two.txt"}))

		got, err := store.List(ctx, id1)
		require.NoError(t, err)
		assert.Equal(t, []string{"one.txt"}, got.Paths())

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)

		require.NoError(t, store.Clear(ctx, id1))
		sessions, err = store.Sessions(ctx)
		require.NoError(t, err)
		assert.NotContains(t, sessions, id1)
	})

	t.Run("Concurrent Appends", func(t *testing.T) {
		id := sessionID + "-concurrent"
		defer func() { _ = store.Clear(ctx, id) }()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Append(ctx, id, domain.SourceEntry{Path: "p.txt", Content: "x"}))
			}()
		}
		wg.Wait()

		got, err := store.List(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 20, got.Len())
	})
}
