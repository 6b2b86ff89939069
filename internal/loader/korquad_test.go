package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKorQuAD = `{
  "version": "KorQuAD_v1.0_train",
  "data": [
    {
      "title": "유엔",
      "paragraphs": [
        {
          "context": "유엔은 1945년에 창설된 국제 기구이다.",
          "qas": [
            {
              "question": "유엔은 언제 창설되었는가?",
              "answers": [{"text": "1945년"}, {"text": "1945"}]
            },
            {
              "question": "유엔은 무엇인가?",
              "answers": [{"text": "국제 기구"}]
            }
          ]
        },
        {
          "context": "유엔은 1945년에 창설된 국제 기구이다.",
          "qas": [
            {
              "question": "중복 컨텍스트의 질문",
              "answers": [{"text": "무시됨"}]
            }
          ]
        }
      ]
    },
    {
      "title": "서울",
      "paragraphs": [
        {
          "context": "서울은 대한민국의 수도이다.",
          "qas": []
        }
      ]
    }
  ]
}`

func TestParseKorQuAD_DeduplicatesContexts(t *testing.T) {
	docs, err := parseKorQuAD(strings.NewReader(sampleKorQuAD))
	require.NoError(t, err)

	// Two unique contexts; the duplicate is dropped.
	require.Len(t, docs, 2)
	assert.Equal(t, "유엔은 1945년에 창설된 국제 기구이다.", docs[0].Content)
	assert.Equal(t, "서울은 대한민국의 수도이다.", docs[1].Content)
}

func TestParseKorQuAD_RepresentativeQA(t *testing.T) {
	docs, err := parseKorQuAD(strings.NewReader(sampleKorQuAD))
	require.NoError(t, err)

	// First QA pair of the first occurrence wins.
	assert.Equal(t, "유엔", docs[0].Metadata.Title)
	assert.Equal(t, "유엔은 언제 창설되었는가?", docs[0].Metadata.Question)
	assert.Equal(t, "1945년", docs[0].Metadata.Answer)
}

func TestParseKorQuAD_ContextWithoutQAs(t *testing.T) {
	docs, err := parseKorQuAD(strings.NewReader(sampleKorQuAD))
	require.NoError(t, err)

	assert.Equal(t, "서울", docs[1].Metadata.Title)
	assert.Empty(t, docs[1].Metadata.Question)
	assert.Empty(t, docs[1].Metadata.Answer)
}

func TestParseKorQuAD_InvalidJSON(t *testing.T) {
	_, err := parseKorQuAD(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestParseKorQuAD_EmptyData(t *testing.T) {
	docs, err := parseKorQuAD(strings.NewReader(`{"version":"v1","data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, docs)
}
