package shipyard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/adapters/memory"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/generator/builtin"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/ports"
	"github.com/aretw0/shipyard/pkg/session"
)

// Service wires the catalog, sessions and dispatcher together.
type Service struct {
	Catalog    *generator.Catalog
	Invoker    *generator.Invoker
	Dispatcher *pipeline.Dispatcher
	Sessions   *session.Manager

	logger *slog.Logger
}

type options struct {
	logger       *slog.Logger
	store        ports.UploadStore
	fetcher      ports.Fetcher
	baselineOpts []baseline.Option
	shared       bool
	generators   []generator.Definition
	noBuiltins   bool
}

// Option configures the Service.
type Option func(*options)

// WithLogger sets a structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUploadStore replaces the in-memory upload store.
func WithUploadStore(store ports.UploadStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithFetcher sets where the baseline dataset is read from.
// Without one the baseline is empty.
func WithFetcher(f ports.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithBaselineOptions configures every baseline loader.
func WithBaselineOptions(opts ...baseline.Option) Option {
	return func(o *options) {
		o.baselineOpts = append(o.baselineOpts, opts...)
	}
}

// WithSharedBaseline makes all sessions share one baseline loader.
func WithSharedBaseline(shared bool) Option {
	return func(o *options) {
		o.shared = shared
	}
}

// WithGenerators registers additional generators next to the built-in ones.
func WithGenerators(defs ...generator.Definition) Option {
	return func(o *options) {
		o.generators = append(o.generators, defs...)
	}
}

// WithoutBuiltins leaves the built-in generators out of the catalog.
func WithoutBuiltins() Option {
	return func(o *options) {
		o.noBuiltins = true
	}
}

// New assembles a Service.
func New(opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}
	if o.fetcher == nil {
		o.fetcher = memory.NewFetcherFromEntries(baseline.DefaultManifest)
	}

	catalog, err := generator.NewCatalog()
	if err != nil {
		return nil, err
	}
	if !o.noBuiltins {
		if err := builtin.Register(catalog); err != nil {
			return nil, err
		}
	}
	for _, def := range o.generators {
		if _, err := catalog.Lookup(def.Kind); err == nil {
			return nil, fmt.Errorf("generator %s is already registered", def.Kind)
		}
		if err := catalog.Register(def); err != nil {
			return nil, fmt.Errorf("failed to register generator %s: %w", def.Kind, err)
		}
	}

	baselineOpts := append([]baseline.Option{baseline.WithLogger(o.logger)}, o.baselineOpts...)
	mgrOpts := []session.Option{
		session.WithLogger(o.logger),
		session.WithBaselineOptions(baselineOpts...),
	}
	if o.shared {
		mgrOpts = append(mgrOpts, session.WithSharedBaseline(baseline.NewLoader(o.fetcher, baselineOpts...)))
	}

	invoker := generator.NewInvoker(catalog, generator.WithLogger(o.logger))
	return &Service{
		Catalog:    catalog,
		Invoker:    invoker,
		Dispatcher: pipeline.NewDispatcher(invoker, pipeline.WithLogger(o.logger)),
		Sessions:   session.NewManager(o.store, o.fetcher, mgrOpts...),
		logger:     o.logger,
	}, nil
}

// Generate runs req in the session sessionID and hands the archive to
// deliverer. See pipeline.Dispatcher.Generate for the error contract.
func (s *Service) Generate(ctx context.Context, sessionID string, req pipeline.Request, deliverer delivery.Deliverer) (domain.GeneratedArtifact, error) {
	sess, err := s.Sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}
	return s.Dispatcher.Generate(ctx, sess, req, deliverer)
}
