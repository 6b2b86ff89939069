// Package loader reads a KorQuAD 1.0 dump, deduplicates contexts,
// chunks them, and indexes embedded chunks into the corpus store.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kailas-cloud/korag/internal/domain"
)

// KorQuAD 1.0 JSON layout (SQuAD-style).
type korquadFile struct {
	Version string         `json:"version"`
	Data    []korquadEntry `json:"data"`
}

type korquadEntry struct {
	Title      string             `json:"title"`
	Paragraphs []korquadParagraph `json:"paragraphs"`
}

type korquadParagraph struct {
	Context string      `json:"context"`
	QAs     []korquadQA `json:"qas"`
}

type korquadQA struct {
	Question string          `json:"question"`
	Answers  []korquadAnswer `json:"answers"`
}

type korquadAnswer struct {
	Text string `json:"text"`
}

// ReadKorQuAD parses a KorQuAD 1.0 JSON file into unique context
// documents. Contexts are deduplicated by exact text; the first QA
// pair of each context becomes its representative question and answer.
func ReadKorQuAD(path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return parseKorQuAD(f)
}

func parseKorQuAD(r io.Reader) ([]domain.Document, error) {
	var file korquadFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	var docs []domain.Document
	seen := make(map[string]struct{})

	for _, entry := range file.Data {
		for _, para := range entry.Paragraphs {
			if para.Context == "" {
				continue
			}
			if _, ok := seen[para.Context]; ok {
				continue
			}
			seen[para.Context] = struct{}{}

			meta := domain.Metadata{Title: entry.Title}
			if len(para.QAs) > 0 {
				meta.Question = para.QAs[0].Question
				if len(para.QAs[0].Answers) > 0 {
					meta.Answer = para.QAs[0].Answers[0].Text
				}
			}

			docs = append(docs, domain.Document{
				Content:  para.Context,
				Metadata: meta,
			})
		}
	}

	return docs, nil
}
