package retrieval

import (
	"context"

	"github.com/kailas-cloud/korag/internal/domain"
	"github.com/kailas-cloud/korag/internal/usecase/resource"
)

// Resources is the slice of the registry retrieval needs.
type Resources interface {
	Embedder(ctx context.Context) (domain.Embedder, error)
	Index(ctx context.Context) (resource.Index, error)
}
