package domain

import "fmt"

// DefaultKFewshot is the number of few-shot exemplars used when the
// request does not specify one.
const DefaultKFewshot = 3

// AnswerRequest is a single question put to the answering pipeline.
// KFewshot is request-scoped: it bounds the exemplars for this call only.
type AnswerRequest struct {
	Question string
	KFewshot int
}

// Validate checks the request before it reaches the pipeline.
// KFewshot = 0 is valid and disables exemplars.
func (r AnswerRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question is required: %w", ErrInvalidRequest)
	}
	if r.KFewshot < 0 {
		return fmt.Errorf("k_fewshot must not be negative, got %d: %w", r.KFewshot, ErrInvalidRequest)
	}
	return nil
}

// SourceDocument describes one retrieved document surfaced to the caller.
// Built once per answer, never mutated afterwards.
type SourceDocument struct {
	Title             string
	RetrievedQuestion string
	ContentSnippet    string
	IsFewshot         bool
}

// AnswerResult is the pipeline's response contract.
// FewShotExamplesUsed always equals the number of SourceDocuments with
// IsFewshot set.
type AnswerResult struct {
	Answer              string
	SourceDocuments     []SourceDocument
	FewShotExamplesUsed int
}
