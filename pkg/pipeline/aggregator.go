package pipeline

import (
	"context"

	"github.com/aretw0/shipyard/pkg/domain"
)

// BaselineSource provides the baseline dataset.
type BaselineSource interface {
	EnsureLoaded(ctx context.Context) domain.SourceCollection
}

// UploadSource provides a snapshot of the uploaded documents.
type UploadSource interface {
	Snapshot(ctx context.Context) (domain.SourceCollection, error)
}

// Assembler produces the sources of a generation request.
type Assembler interface {
	Assemble(ctx context.Context, includeBaseline bool) (domain.SourceCollection, error)
}

// Aggregator combines the baseline and uploaded documents of a session.
type Aggregator struct {
	baseline BaselineSource
	uploads  UploadSource
}

// NewAggregator creates an Aggregator.
func NewAggregator(baseline BaselineSource, uploads UploadSource) *Aggregator {
	return &Aggregator{baseline: baseline, uploads: uploads}
}

// Assemble returns the uploaded documents, preceded by the baseline when
// includeBaseline is set. Baseline entries come first so that uploads with
// the same path are read after, and override, the baseline.
// The result is recomputed on every call.
func (a *Aggregator) Assemble(ctx context.Context, includeBaseline bool) (domain.SourceCollection, error) {
	uploaded, err := a.uploads.Snapshot(ctx)
	if err != nil {
		return domain.SourceCollection{}, err
	}
	if !includeBaseline {
		return uploaded, nil
	}
	return domain.Concat(a.baseline.EnsureLoaded(ctx), uploaded), nil
}
