package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/shipyard/pkg/adapters/memory"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/domain"
	contract "github.com/aretw0/shipyard/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
)

func TestFetcher_Contract(t *testing.T) {
	data := map[string]string{
		"map.txt":   "system Sol",
		"ships.txt": "ship Shuttle",
	}

	contract.FetcherContractTest(t, memory.NewFetcher(data), data)
}

func TestFetcherFromEntries_DrivesLoader(t *testing.T) {
	f := memory.NewFetcherFromEntries(baseline.DefaultManifest,
		domain.SourceEntry{Path: "b.txt", Content: "B"},
		domain.SourceEntry{Path: "a.txt", Content: "A"},
	)

	got := baseline.NewLoader(f).EnsureLoaded(context.Background())
	assert.Equal(t, []string{"b.txt", "a.txt"}, got.Paths())
	assert.Equal(t, []string{"a.txt", "b.txt", baseline.DefaultManifest}, f.Locations())
}
