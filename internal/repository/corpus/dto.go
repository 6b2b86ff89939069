package corpus

import (
	"encoding/binary"
	"math"

	"github.com/kailas-cloud/korag/internal/domain"
)

// Hash field names. Double-underscore fields are internal to the store;
// the rest mirror the document metadata the indexer recorded.
const (
	fieldContent  = "__content"
	fieldVector   = "__vector"
	fieldTitle    = "title"
	fieldQuestion = "question"
	fieldAnswer   = "answer"
)

// buildHashFields converts an indexed document into a flat map for HSET.
// Absent metadata fields are not written; reads default them.
func buildHashFields(doc *IndexedDocument) map[string]string {
	m := map[string]string{
		fieldContent: doc.Doc.Content,
		fieldVector:  vectorToBytes(doc.Vector),
	}
	if doc.Doc.Metadata.Title != "" {
		m[fieldTitle] = doc.Doc.Metadata.Title
	}
	if doc.Doc.Metadata.Question != "" {
		m[fieldQuestion] = doc.Doc.Metadata.Question
	}
	if doc.Doc.Metadata.Answer != "" {
		m[fieldAnswer] = doc.Doc.Metadata.Answer
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Document.
// Missing metadata collapses to the "N/A" sentinel.
func parseHashFields(id string, m map[string]string) domain.Document {
	return domain.Document{
		ID:      id,
		Content: m[fieldContent],
		Metadata: domain.Metadata{
			Title:    m[fieldTitle],
			Question: m[fieldQuestion],
			Answer:   m[fieldAnswer],
		}.WithDefaults(),
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
