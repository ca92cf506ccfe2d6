package tests

import (
	"context"
	"testing"

	"github.com/aretw0/shipyard/pkg/ports"
)

// FetcherContractTest is a reusable test suite that verifies if an adapter complies with ports.Fetcher.
// docs maps every location the fetcher can serve to its expected content.
func FetcherContractTest(t *testing.T, fetcher ports.Fetcher, docs map[string]string) {
	t.Helper()

	// 1. Fetch (Success)
	t.Run("Fetch_Success", func(t *testing.T) {
		for location, expected := range docs {
			content, err := fetcher.Fetch(context.Background(), location)
			if err != nil {
				t.Fatalf("unexpected error fetching %s: %v", location, err)
			}
			if content != expected {
				t.Errorf("content mismatch for %s. got %q, want %q", location, content, expected)
			}
		}
	})

	// 2. Fetch (NotFound)
	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), "non-existent-document.txt")
		if err == nil {
			t.Error("expected error for non-existent document, got nil")
		}
	})

	// 3. Fetch (Cancelled)
	t.Run("Fetch_Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for location := range docs {
			if _, err := fetcher.Fetch(ctx, location); err == nil {
				t.Errorf("expected error fetching %s with cancelled context, got nil", location)
			}
			break
		}
	})
}
