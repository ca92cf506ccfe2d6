package generator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/observability"
)

// Invoker runs generator routines and contains their failures.
type Invoker struct {
	catalog *Catalog
	logger  *slog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithLogger sets the logger used to report invocation failures.
func WithLogger(logger *slog.Logger) InvokerOption {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInvoker creates an Invoker dispatching through catalog.
func NewInvoker(catalog *Catalog, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		catalog: catalog,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Catalog returns the catalog the invoker dispatches through.
func (i *Invoker) Catalog() *Catalog { return i.catalog }

// Invoke runs the routine registered for kind with the given sources.
//
// An unknown kind returns an error wrapping domain.ErrUnknownGenerator. Any
// other failure is returned as a *domain.InvocationError whose Message is the
// routine's error text verbatim; no artifact is produced in that case.
func (i *Invoker) Invoke(ctx context.Context, kind domain.GeneratorKind, sources domain.SourceCollection, cfg domain.GeneratorConfig) (domain.GeneratedArtifact, error) {
	def, err := i.catalog.Lookup(kind)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}

	start := time.Now()
	data, invErr := i.call(ctx, def, sources, cfg)
	elapsed := time.Since(start)

	if invErr != nil {
		outcome := observability.OutcomeFailed
		if invErr.Panicked {
			outcome = observability.OutcomePanic
		}
		observability.RecordGeneration(string(kind), outcome, elapsed)
		i.logger.Error("generator failed",
			"kind", kind,
			"panicked", invErr.Panicked,
			"documents", sources.Len(),
			"error", invErr.Message)
		return domain.GeneratedArtifact{}, invErr
	}

	observability.RecordGeneration(string(kind), observability.OutcomeSuccess, elapsed)
	observability.RecordArtifact(string(kind), len(data))
	i.logger.Debug("generator finished",
		"kind", kind,
		"documents", sources.Len(),
		"bytes", len(data),
		"duration", elapsed)

	return domain.GeneratedArtifact{Filename: def.Filename, Bytes: data}, nil
}

func (i *Invoker) call(ctx context.Context, def Definition, sources domain.SourceCollection, cfg domain.GeneratorConfig) (data []byte, invErr *domain.InvocationError) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Debug("generator panic stack", "kind", def.Kind, "stack", string(debug.Stack()))
			data = nil
			invErr = &domain.InvocationError{
				Kind:     def.Kind,
				Message:  fmt.Sprint(r),
				Panicked: true,
			}
		}
	}()

	out, err := def.Routine(ctx, sources.Paths(), sources.Contents(), cfg)
	if err != nil {
		return nil, &domain.InvocationError{Kind: def.Kind, Message: err.Error(), Err: err}
	}
	return out, nil
}
