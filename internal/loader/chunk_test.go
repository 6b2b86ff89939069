package loader

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := splitText("짧은 문서입니다.", 1000, 100)

	assert.Equal(t, []string{"짧은 문서입니다."}, chunks)
}

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, splitText("", 1000, 100))
	assert.Nil(t, splitText("   ", 1000, 100))
}

func TestSplitText_LongTextIsSplit(t *testing.T) {
	sentence := "대한민국의 수도는 서울이다. "
	text := strings.Repeat(sentence, 200)

	chunks := splitText(text, 1000, 100)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 1000)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitText_PrefersSentenceBoundary(t *testing.T) {
	sentence := "문장 경계에서 잘라야 한다. "
	text := strings.Repeat(sentence, 100)

	chunks := splitText(text, 200, 20)

	// Every non-final chunk should end at a sentence boundary.
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, "."), "chunk %q should end with a period", c)
	}
}

func TestSplitText_MultiByteSafe(t *testing.T) {
	text := strings.Repeat("한글과 漢字가 섞인 텍스트. ", 300)

	chunks := splitText(text, 500, 50)

	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk must not cut a rune in half")
	}
}

func TestSplitText_CoversAllContent(t *testing.T) {
	sentence := "손실 없이 모든 내용이 포함되어야 한다. "
	text := strings.Repeat(sentence, 120)

	chunks := splitText(text, 300, 50)

	// The unique sentence appears in every region, so each chunk holds it.
	for _, c := range chunks {
		assert.Contains(t, c, "손실 없이")
	}
	// Last rune of the text lands in the final chunk.
	assert.Contains(t, chunks[len(chunks)-1], strings.TrimSpace(sentence))
}

func TestSplitText_DegenerateParams(t *testing.T) {
	assert.Nil(t, splitText("텍스트", 0, 0))

	// Overlap >= size falls back to zero overlap instead of looping.
	chunks := splitText(strings.Repeat("가나다라. ", 100), 50, 50)
	assert.NotEmpty(t, chunks)
}
