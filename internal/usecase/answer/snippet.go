package answer

import "strings"

const (
	// snippetHeadRunes bounds fallback snippets. Rune-based: the corpus
	// is Korean and byte slicing would cut multi-byte characters.
	snippetHeadRunes = 200

	ellipsisMarker        = "..."
	extractionErrorMarker = "... (스니펫 추출 오류)"
)

// extractSnippet derives the evidence snippet bounding answer inside
// context: from the answer's first occurrence through the first
// following period. When the answer is absent the head of the context
// is returned instead. Extraction never fails answer delivery; any
// panic degrades to the head fallback with an error marker.
func extractSnippet(context, answer string) (snippet string) {
	defer func() {
		if r := recover(); r != nil {
			snippet = headRunes(context, snippetHeadRunes) + extractionErrorMarker
		}
	}()

	if answer == "" || !strings.Contains(context, answer) {
		return headRunes(context, snippetHeadRunes) + ellipsisMarker
	}

	start := strings.Index(context, answer)

	if end := strings.IndexByte(context[start:], '.'); end >= 0 {
		return strings.TrimSpace(context[start : start+end+1])
	}

	return strings.TrimSpace(headRunes(context[start:], snippetHeadRunes) + ellipsisMarker)
}

// headRunes returns the first n runes of s.
func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
