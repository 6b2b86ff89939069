package loader

import "strings"

// chunk boundary candidates, tried in order. Korean prose uses the
// same ASCII period and newline separators.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// splitText slices text into rune-bounded chunks with overlap. A chunk
// ends at the last separator inside the window when one exists past the
// halfway point, otherwise at the hard rune limit. Multi-byte text is
// never cut mid-rune.
func splitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= chunkSize {
		if s := strings.TrimSpace(text); s != "" {
			return []string{s}
		}
		return nil
	}

	var chunks []string
	step := chunkSize - overlap
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := boundaryCut(runes[start:end]); cut > 0 {
			end = start + cut
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			chunks = append(chunks, s)
		}

		if end == len(runes) {
			break
		}
		// Advance relative to the actual cut so overlap stays constant.
		step = end - start - overlap
		if step <= 0 {
			step = 1
		}
	}

	return chunks
}

// boundaryCut returns the rune offset just past the last separator in
// window, or 0 when no separator lands in the second half.
func boundaryCut(window []rune) int {
	s := string(window)
	for _, sep := range chunkSeparators {
		idx := strings.LastIndex(s, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(s[:idx+len(sep)]))
		if cut > len(window)/2 {
			return cut
		}
	}
	return 0
}
