package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/korag/internal/domain"
	"github.com/kailas-cloud/korag/internal/usecase/resource"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockIndex struct {
	docs  []domain.Document
	err   error
	lastK int
}

func (m *mockIndex) SearchKNN(_ context.Context, _ []float32, k int) ([]domain.Document, error) {
	m.lastK = k
	return m.docs, m.err
}

type mockResources struct {
	embedder    *mockEmbedder
	index       *mockIndex
	embedderErr error
	indexErr    error
}

func (m *mockResources) Embedder(_ context.Context) (domain.Embedder, error) {
	return m.embedder, m.embedderErr
}

func (m *mockResources) Index(_ context.Context) (resource.Index, error) {
	return m.index, m.indexErr
}

// --- Tests ---

func TestSearch_ReturnsRankedDocuments(t *testing.T) {
	res := &mockResources{
		embedder: &mockEmbedder{vec: []float32{0.1, 0.2}},
		index: &mockIndex{docs: []domain.Document{
			{ID: "a", Content: "first", Score: 0.9},
			{ID: "b", Content: "second", Score: 0.7},
		}},
	}
	svc := New(res)

	docs, err := svc.Search(context.Background(), "질문", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "a" {
		t.Errorf("expected most relevant document first, got %q", docs[0].ID)
	}
	if !res.embedder.called {
		t.Error("expected query to be embedded")
	}
	if res.index.lastK != 4 {
		t.Errorf("expected k=4 passed through, got %d", res.index.lastK)
	}
}

func TestSearch_RejectsNonPositiveK(t *testing.T) {
	svc := New(&mockResources{embedder: &mockEmbedder{}, index: &mockIndex{}})

	for _, k := range []int{0, -1} {
		_, err := svc.Search(context.Background(), "q", k)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("k=%d: expected ErrInvalidRequest, got %v", k, err)
		}
	}
}

func TestSearch_IndexUnavailable(t *testing.T) {
	res := &mockResources{
		embedder: &mockEmbedder{vec: []float32{0.1}},
		indexErr: fmt.Errorf("corpus not loaded: %w", domain.ErrResourceUnavailable),
	}
	svc := New(res)

	_, err := svc.Search(context.Background(), "q", 1)
	if !errors.Is(err, domain.ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
}

func TestSearch_EmptyIndexIsNotAnError(t *testing.T) {
	res := &mockResources{
		embedder: &mockEmbedder{vec: []float32{0.1}},
		index:    &mockIndex{},
	}
	svc := New(res)

	docs, err := svc.Search(context.Background(), "q", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestSearch_EmbedderFailure(t *testing.T) {
	res := &mockResources{
		embedder: &mockEmbedder{err: errors.New("provider down")},
		index:    &mockIndex{},
	}
	svc := New(res)

	if _, err := svc.Search(context.Background(), "q", 2); err == nil {
		t.Fatal("expected error")
	}
}
