// Package corpus is the repository over the indexed QA corpus: KNN
// retrieval for the serving path and index bootstrap plus batch upsert
// for the offline loader.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/korag/internal/db"
	"github.com/kailas-cloud/korag/internal/domain"
)

// store is the consumer interface for corpus operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexedDocument pairs a document with its embedding for upsert.
type IndexedDocument struct {
	Doc    domain.Document
	Vector []float32
}

// HNSWConfig holds HNSW build parameters for the vector index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements corpus storage over a db.Store.
type Repo struct {
	store     store
	keyPrefix string
	hnsw      HNSWConfig
}

// New creates a corpus repository. keyPrefix namespaces all keys, e.g. "korag:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// WithHNSW overrides HNSW build parameters for EnsureIndex.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// IndexName returns the FT index name for the corpus.
func (r *Repo) IndexName() string {
	return r.keyPrefix + "doc:idx"
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + "doc:" + id
}

// CheckReady verifies the corpus index exists and holds at least one
// document. Returns ErrResourceUnavailable otherwise, so the registry
// can distinguish "run the loader first" from harder failures.
func (r *Repo) CheckReady(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.IndexName(), err)
	}
	if !exists {
		return fmt.Errorf("corpus index %s does not exist: %w", r.IndexName(), domain.ErrResourceUnavailable)
	}
	return nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName(), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, fmt.Errorf("corpus index %s does not exist: %w", r.IndexName(), domain.ErrResourceUnavailable)
		}
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// SearchKNN returns up to k documents by decreasing similarity to the vector.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Document, error) {
	q := &db.KNNQuery{
		IndexName:    r.IndexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldContent, fieldTitle, fieldQuestion, fieldAnswer, "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("corpus index %s does not exist: %w", r.IndexName(), domain.ErrResourceUnavailable)
		}
		return nil, fmt.Errorf("search knn: %w", err)
	}

	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := r.keyPrefix + "doc:"
	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc := parseHashFields(strings.TrimPrefix(entry.Key, prefix), entry.Fields)
		doc.Score = entry.Score
		docs = append(docs, doc)
	}
	return docs, nil
}

// EnsureIndex creates the corpus FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) error {
	def := &db.IndexDefinition{
		Name:     r.IndexName(),
		Prefixes: []string{r.keyPrefix + "doc:"},
		Fields: []db.IndexField{
			{Name: fieldTitle, Type: db.IndexFieldTag},
			{
				Name:              fieldVector,
				Alias:             "vector", // KNN queries address @vector
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.IndexName(), err)
	}
	return nil
}

// Reset drops the corpus index and deletes every stored document so
// the loader can rebuild from scratch. A missing index is not an
// error; leftover document keys are still swept.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.IndexName(), err)
	}

	keys, err := r.store.Scan(ctx, r.keyPrefix+"doc:*")
	if err != nil {
		return fmt.Errorf("scan corpus keys: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// UpsertBatch stores a batch of embedded documents in one round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, docs []IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    r.docKey(docs[i].Doc.ID),
			Fields: buildHashFields(&docs[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert batch of %d: %w", len(docs), err)
	}
	return nil
}
