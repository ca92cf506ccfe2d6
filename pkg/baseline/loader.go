package baseline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/observability"
	"github.com/aretw0/shipyard/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultManifest is the manifest location used when none is configured.
const DefaultManifest = "es_stable_data_paths.txt"

// DefaultConcurrency bounds parallel document fetches.
const DefaultConcurrency = 8

// State is the lifecycle of a Loader.
type State int

const (
	NotLoaded State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Fetcher retrieves the text found at a location.
type Fetcher = ports.Fetcher

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) (string, error) {
	return f(ctx, location)
}

// load is one in-flight load that concurrent callers can join.
type load struct {
	done chan struct{}
	data domain.SourceCollection
	// interrupted is set when the leading caller's context ended the load.
	interrupted bool
}

// Loader lazily fetches and latches the baseline dataset.
// It is safe for concurrent use.
type Loader struct {
	fetcher     Fetcher
	manifest    string
	concurrency int
	logger      *slog.Logger

	mu       sync.Mutex
	state    State
	data     domain.SourceCollection
	inflight *load
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithManifest sets the manifest location.
func WithManifest(location string) Option {
	return func(l *Loader) {
		if location != "" {
			l.manifest = location
		}
	}
}

// WithConcurrency bounds the number of documents fetched in parallel.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLoader creates a Loader reading through fetcher.
func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     fetcher,
		manifest:    DefaultManifest,
		concurrency: DefaultConcurrency,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// EnsureLoaded returns the baseline collection, loading it on first use.
//
// It never fails: a manifest fetch failure yields an empty collection and
// leaves the Loader in NotLoaded. A caller arriving during a load waits for
// that load and shares its result. A load whose context is cancelled returns
// what it gathered to its own caller but is not latched; callers that joined
// it with a live context start or join a fresh load instead.
func (l *Loader) EnsureLoaded(ctx context.Context) domain.SourceCollection {
	for {
		l.mu.Lock()
		switch l.state {
		case Loaded:
			data := l.data.Clone()
			l.mu.Unlock()
			return data
		case Loading:
			in := l.inflight
			l.mu.Unlock()
			select {
			case <-in.done:
				if in.interrupted && ctx.Err() == nil {
					continue
				}
				return in.data.Clone()
			case <-ctx.Done():
				return domain.SourceCollection{}
			}
		}

		in := &load{done: make(chan struct{})}
		l.state = Loading
		l.inflight = in
		l.mu.Unlock()

		return l.lead(ctx, in)
	}
}

// lead runs the load in and publishes its outcome to every joined caller.
func (l *Loader) lead(ctx context.Context, in *load) domain.SourceCollection {
	data, complete := l.load(ctx)

	l.mu.Lock()
	if complete {
		l.state = Loaded
		l.data = data
		observability.RecordBaselineLoaded(data.Len())
		l.logger.Info("baseline latched", "documents", data.Len())
	} else {
		l.state = NotLoaded
		in.interrupted = ctx.Err() != nil
	}
	l.inflight = nil
	in.data = data
	close(in.done)
	l.mu.Unlock()

	return data.Clone()
}

// load fetches the manifest and every document it lists. complete is false
// when the manifest could not be read or ctx ended before the load finished.
func (l *Loader) load(ctx context.Context) (data domain.SourceCollection, complete bool) {
	text, err := l.fetcher.Fetch(ctx, l.manifest)
	observability.RecordBaselineFetch("manifest", err == nil)
	if err != nil {
		l.logger.Error("baseline manifest fetch failed",
			"manifest", l.manifest,
			"error", asFetchError(l.manifest, err))
		return domain.SourceCollection{}, false
	}

	locations := ParseManifest(text)
	entries := make([]*domain.SourceEntry, len(locations))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, location := range locations {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			content, err := l.fetcher.Fetch(ctx, location)
			observability.RecordBaselineFetch("document", err == nil)
			if err != nil {
				l.logger.Warn("baseline document fetch failed",
					"location", location,
					"error", asFetchError(location, err))
				return nil
			}
			entries[i] = &domain.SourceEntry{Path: location, Content: content}
			return nil
		})
	}
	// Workers never return errors; failures are logged per document.
	_ = g.Wait()

	for _, e := range entries {
		if e != nil {
			data.Append(*e)
		}
	}

	if err := ctx.Err(); err != nil {
		l.logger.Warn("baseline load interrupted", "fetched", data.Len(), "listed", len(locations), "error", err)
		return data, false
	}
	l.logger.Debug("baseline loaded", "fetched", data.Len(), "listed", len(locations))
	return data, true
}

// ParseManifest splits manifest text into locations, ignoring blank lines and
// surrounding whitespace.
func ParseManifest(text string) []string {
	var locations []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			locations = append(locations, line)
		}
	}
	return locations
}

func asFetchError(location string, err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &domain.FetchError{Location: location, Err: err}
}
