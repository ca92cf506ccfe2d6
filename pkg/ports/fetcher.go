package ports

import "context"

// Fetcher retrieves the text found at a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}
