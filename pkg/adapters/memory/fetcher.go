package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/shipyard/pkg/domain"
)

// Fetcher implements ports.Fetcher over an in-memory map of documents.
type Fetcher struct {
	docs map[string]string
}

// NewFetcher creates a Fetcher serving a copy of docs.
func NewFetcher(docs map[string]string) *Fetcher {
	copied := make(map[string]string, len(docs))
	for k, v := range docs {
		copied[k] = v
	}
	return &Fetcher{docs: copied}
}

// NewFetcherFromEntries creates a Fetcher serving entries plus a manifest that
// lists them in order.
func NewFetcherFromEntries(manifest string, entries ...domain.SourceEntry) *Fetcher {
	docs := make(map[string]string, len(entries)+1)
	list := ""
	for _, e := range entries {
		docs[e.Path] = e.Content
		list += e.Path + "\n"
	}
	docs[manifest] = list
	return &Fetcher{docs: docs}
}

// Fetch returns the document stored at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.FetchError{Location: location, Err: err}
	}
	content, ok := f.docs[location]
	if !ok {
		return "", &domain.FetchError{Location: location, Err: fmt.Errorf("document not found")}
	}
	return content, nil
}

// Locations returns every served location, sorted.
func (f *Fetcher) Locations() []string {
	keys := make([]string, 0, len(f.docs))
	for k := range f.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
