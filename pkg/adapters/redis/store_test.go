package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/shipyard/pkg/adapters/redis"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunUploadStoreContract(t, store)
	assert.NoError(t, store.Close())
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	defer client.Close()

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	err = store.Append(ctx, sessionID, domain.SourceEntry{Path: "a.txt", Content: "A"})
	require.NoError(t, err)

	got, err := store.List(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	// Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	got, err = store.List(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	// The index relies on wall clock time for pruning.
	time.Sleep(1200 * time.Millisecond)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	defer client.Close()

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err = store.Append(ctx, "my-session", domain.SourceEntry{Path: "map.txt", Content: "system Sol"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	items, err := mr.List("custom:app:my-session")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"path":"map.txt","content":"system Sol"}`, items[0])

	require.NoError(t, store.Ping(ctx))
}
