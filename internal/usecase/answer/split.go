package answer

import "github.com/kailas-cloud/korag/internal/domain"

// splitExemplars partitions ranked retrieval results into the evidence
// anchor and the few-shot exemplars. The single most relevant document
// is reserved as grounding evidence and never reused as an exemplar;
// up to kFewshot of the remaining documents follow in retrieved order.
// Retrieval over-fetches by kFewshot+1 to make this split possible.
func splitExemplars(results []domain.Document, kFewshot int) (*domain.Document, []domain.Document) {
	if len(results) == 0 {
		return nil, nil
	}

	anchor := results[0]

	end := kFewshot + 1
	if end > len(results) {
		end = len(results)
	}
	exemplars := results[1:end]

	return &anchor, exemplars
}
