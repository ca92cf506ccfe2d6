package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
	"github.com/aretw0/shipyard/pkg/observability"
)

// Request is one generation command.
type Request struct {
	Kind            domain.GeneratorKind `json:"kind"`
	IncludeBaseline bool                 `json:"include_baseline"`
	Fields          map[string]any       `json:"fields"`
}

// Dispatcher handles generation requests.
type Dispatcher struct {
	invoker *generator.Invoker
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher invoking generators through invoker.
func NewDispatcher(invoker *generator.Invoker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		invoker: invoker,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the generators the dispatcher can run.
func (d *Dispatcher) Catalog() *generator.Catalog {
	return d.invoker.Catalog()
}

// Generate validates req, assembles the sources, invokes the generator and
// hands the artifact to deliverer.
//
// Errors:
//   - wrapping domain.ErrUnknownGenerator when the kind is not registered;
//   - *schema.AggregateError when fields are invalid (nothing is fetched or invoked);
//   - *domain.InvocationError when the generator fails (nothing is delivered);
//   - any assembly or delivery error, wrapped.
func (d *Dispatcher) Generate(ctx context.Context, sources Assembler, req Request, deliverer delivery.Deliverer) (domain.GeneratedArtifact, error) {
	def, err := d.Catalog().Lookup(req.Kind)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	cfg, err := generator.Validate(def, req.Fields)
	if err != nil {
		observability.RecordGeneration(string(req.Kind), observability.OutcomeInvalid, 0)
		d.logger.Info("generation rejected", "kind", req.Kind, "error", err)
		return domain.GeneratedArtifact{}, err
	}

	collection, err := sources.Assemble(ctx, req.IncludeBaseline)
	if err != nil {
		return domain.GeneratedArtifact{}, fmt.Errorf("failed to assemble sources: %w", err)
	}

	artifact, err := d.invoker.Invoke(ctx, req.Kind, collection, cfg)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	if deliverer != nil {
		if err := deliverer.Deliver(ctx, artifact); err != nil {
			return artifact, fmt.Errorf("failed to deliver %s: %w", artifact.Filename, err)
		}
	}

	d.logger.Info("generation delivered",
		"kind", req.Kind,
		"include_baseline", req.IncludeBaseline,
		"documents", collection.Len(),
		"filename", artifact.Filename,
		"bytes", artifact.Size())
	return artifact, nil
}
