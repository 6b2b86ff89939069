package resource

import (
	"context"

	"github.com/kailas-cloud/korag/internal/domain"
)

// Index is the handle to a populated vector index.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Document, error)
}

// Builders construct the process-lifetime resources on first use.
// A builder that fails with domain.ErrResourceUnavailable signals a
// missing external dependency (index not loaded yet, backend down) and
// is re-attempted on the next access; any other failure is terminal.
type Builders struct {
	Embedder  func(ctx context.Context) (domain.Embedder, error)
	Index     func(ctx context.Context) (Index, error)
	Generator func(ctx context.Context) (domain.Generator, error)
}
