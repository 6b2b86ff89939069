// Package answer implements the few-shot retrieval-augmented answering
// pipeline: retrieve, split into anchor and exemplars, assemble the
// prompt, generate deterministically, and extract the evidence snippet.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
	"github.com/kailas-cloud/korag/internal/metrics"
)

// FallbackAnswer is returned when retrieval finds no documents at all.
// Empty retrieval is a defined outcome, not an error.
const FallbackAnswer = "관련 정보를 찾을 수 없습니다."

// Service orchestrates a single answer request. Stateless per call;
// all shared state lives behind the injected collaborators.
type Service struct {
	retriever Retriever
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates the answering pipeline. timeout bounds retrieval plus
// generation per request; zero disables the bound.
func New(retriever Retriever, generator Generator, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Answer runs the pipeline for one request.
func (s *Service) Answer(ctx context.Context, req domain.AnswerRequest) (domain.AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return domain.AnswerResult{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Over-fetch by one so the top hit can be reserved as the anchor.
	results, err := s.retriever.Search(ctx, req.Question, req.KFewshot+1)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues("error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.AnswerResult{}, fmt.Errorf("retrieval deadline exceeded: %w", domain.ErrTimeout)
		}
		return domain.AnswerResult{}, fmt.Errorf("retrieve: %w", err)
	}

	anchor, exemplars := splitExemplars(results, req.KFewshot)
	if anchor == nil {
		metrics.AnswersTotal.WithLabelValues("fallback").Inc()
		s.logger.Info("No documents retrieved, returning fallback",
			zap.String("question", req.Question),
		)
		return domain.AnswerResult{
			Answer:              FallbackAnswer,
			SourceDocuments:     []domain.SourceDocument{},
			FewShotExamplesUsed: 0,
		}, nil
	}

	prompt := assemblePrompt(exemplars, anchor.Content, req.Question)

	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues("error").Inc()
		return domain.AnswerResult{}, fmt.Errorf("generate: %w", err)
	}

	snippet := extractSnippet(anchor.Content, generated)

	metrics.AnswersTotal.WithLabelValues("answered").Inc()
	metrics.FewShotExamplesUsed.Observe(float64(len(exemplars)))

	s.logger.Debug("Answer produced",
		zap.String("anchor_id", anchor.ID),
		zap.Int("retrieved", len(results)),
		zap.Int("exemplars", len(exemplars)),
	)

	return domain.AnswerResult{
		Answer:              generated,
		SourceDocuments:     buildSourceDocuments(anchor, exemplars, snippet),
		FewShotExamplesUsed: len(exemplars),
	}, nil
}

// buildSourceDocuments lists the anchor first, then each exemplar in
// retrieved order. Only the anchor gets snippet extraction; exemplars
// surface their full content.
func buildSourceDocuments(
	anchor *domain.Document, exemplars []domain.Document, snippet string,
) []domain.SourceDocument {
	anchorMeta := anchor.Metadata.WithDefaults()
	out := make([]domain.SourceDocument, 0, 1+len(exemplars))
	out = append(out, domain.SourceDocument{
		Title:             anchorMeta.Title,
		RetrievedQuestion: anchorMeta.Question,
		ContentSnippet:    snippet,
		IsFewshot:         false,
	})

	for _, ex := range exemplars {
		meta := ex.Metadata.WithDefaults()
		out = append(out, domain.SourceDocument{
			Title:             meta.Title,
			RetrievedQuestion: meta.Question,
			ContentSnippet:    ex.Content,
			IsFewshot:         true,
		})
	}
	return out
}
