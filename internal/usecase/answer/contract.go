package answer

import (
	"context"

	"github.com/kailas-cloud/korag/internal/domain"
)

// Retriever returns up to k corpus documents by decreasing similarity.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Document, error)
}

// Generator produces the continuation for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
