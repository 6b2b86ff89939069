// Package generation submits prompts to the generation model under the
// pipeline's reproducibility contract.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
)

// Resources is the slice of the registry generation needs.
type Resources interface {
	Generator(ctx context.Context) (domain.Generator, error)
}

// Invoker runs generation calls one at a time. The model instance is
// not assumed safe for concurrent reentrant use, so calls are
// serialized with a mutex rather than issued in parallel.
type Invoker struct {
	resources Resources
	mu        sync.Mutex
	logger    *zap.Logger
}

// NewInvoker creates a serialized generation invoker.
func NewInvoker(resources Resources, logger *zap.Logger) *Invoker {
	return &Invoker{resources: resources, logger: logger}
}

// Generate produces the continuation for prompt. Failures wrap
// domain.ErrGenerationFailure (or domain.ErrTimeout on deadline expiry)
// and are not retried here.
func (i *Invoker) Generate(ctx context.Context, prompt string) (string, error) {
	gen, err := i.resources.Generator(ctx)
	if err != nil {
		return "", fmt.Errorf("get generator: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	result, err := gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("generation deadline exceeded: %w", domain.ErrTimeout)
		}
		if errors.Is(err, domain.ErrGenerationFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}

	i.logger.Debug("Generation invoked",
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)

	return result.Text, nil
}
