// Package retrieval wraps the vector index's nearest-neighbor search
// behind a stable interface.
package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/korag/internal/domain"
)

// Service retrieves corpus documents by semantic similarity.
type Service struct {
	resources Resources
}

// New creates a retrieval service.
func New(resources Resources) *Service {
	return &Service{resources: resources}
}

// Search embeds the query and returns up to k documents ordered by
// decreasing similarity. The index is never mutated. A missing or
// unpopulated index surfaces domain.ErrResourceUnavailable.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidRequest)
	}

	embedder, err := s.resources.Embedder(ctx)
	if err != nil {
		return nil, fmt.Errorf("get embedder: %w", err)
	}

	index, err := s.resources.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}

	embResult, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	docs, err := index.SearchKNN(ctx, embResult.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return docs, nil
}
