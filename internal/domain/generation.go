package domain

import "context"

// GenerationResult holds the continuation text and token usage for one
// generation call.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Generator produces a continuation for a prompt under the provider's
// configured decoding policy. Implementations for this pipeline must
// decode deterministically: identical prompts yield identical text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}
