// Package resource owns the lazily-constructed, process-lifetime
// handles the answering pipeline depends on: the embedding provider,
// the vector index, and the generation provider.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
)

// lazyResource guards one resource's lifecycle:
// uninitialized → ready (terminal) or uninitialized → failed.
// The mutex is held across construction, so concurrent first callers
// wait on the single in-flight attempt instead of duplicating it.
type lazyResource[T any] struct {
	mu    sync.Mutex
	name  string
	build func(ctx context.Context) (T, error)

	value T
	ready bool
	err   error // sticky terminal failure
}

func (l *lazyResource[T]) get(ctx context.Context, logger *zap.Logger) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}
	if l.err != nil {
		var zero T
		return zero, l.err
	}

	start := time.Now()
	v, err := l.build(ctx)
	if err != nil {
		var zero T
		if errors.Is(err, domain.ErrResourceUnavailable) {
			// Missing external dependency: stay uninitialized and let the
			// next access retry.
			logger.Warn("Resource dependency unavailable",
				zap.String("resource", l.name),
				zap.Error(err),
			)
			return zero, err
		}
		l.err = fmt.Errorf("construct %s: %w", l.name, err)
		logger.Error("Resource construction failed",
			zap.String("resource", l.name),
			zap.Error(err),
		)
		return zero, l.err
	}

	l.value = v
	l.ready = true
	logger.Info("Resource ready",
		zap.String("resource", l.name),
		zap.Duration("construction", time.Since(start)),
	)
	return v, nil
}

// Registry provides one-time, lazily-initialized access to the shared
// model and index resources. All accessors are safe for concurrent use;
// resources are read-mostly after construction.
type Registry struct {
	embedder  lazyResource[domain.Embedder]
	index     lazyResource[Index]
	generator lazyResource[domain.Generator]
	logger    *zap.Logger
}

// NewRegistry creates a registry from resource builders.
func NewRegistry(b Builders, logger *zap.Logger) *Registry {
	return &Registry{
		embedder:  lazyResource[domain.Embedder]{name: "embedder", build: b.Embedder},
		index:     lazyResource[Index]{name: "index", build: b.Index},
		generator: lazyResource[domain.Generator]{name: "generator", build: b.Generator},
		logger:    logger,
	}
}

// Embedder returns the embedding provider, constructing it on first call.
func (r *Registry) Embedder(ctx context.Context) (domain.Embedder, error) {
	return r.embedder.get(ctx, r.logger)
}

// Index returns the vector index handle, constructing it on first call.
// Fails with domain.ErrResourceUnavailable while the corpus is not loaded.
func (r *Registry) Index(ctx context.Context) (Index, error) {
	return r.index.get(ctx, r.logger)
}

// Generator returns the generation provider, constructing it on first call.
func (r *Registry) Generator(ctx context.Context) (domain.Generator, error) {
	return r.generator.get(ctx, r.logger)
}

// InitializeAll pre-warms every resource so the first request does not
// pay construction latency. Intended for startup; the caller decides
// whether a failure halts the process.
func (r *Registry) InitializeAll(ctx context.Context) error {
	if _, err := r.Embedder(ctx); err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	if _, err := r.Index(ctx); err != nil {
		return fmt.Errorf("initialize index: %w", err)
	}
	if _, err := r.Generator(ctx); err != nil {
		return fmt.Errorf("initialize generator: %w", err)
	}
	return nil
}
