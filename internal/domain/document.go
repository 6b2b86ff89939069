package domain

// MetadataAbsent is the sentinel stored metadata fields default to when
// the indexed document carries no value for them.
const MetadataAbsent = "N/A"

// Metadata holds the descriptive fields attached to a corpus document.
// Question and Answer describe the representative QA pair the indexer
// recorded for the passage; either may be absent.
type Metadata struct {
	Title    string
	Question string
	Answer   string
}

// WithDefaults returns a copy with absent fields replaced by MetadataAbsent.
func (m Metadata) WithDefaults() Metadata {
	if m.Title == "" {
		m.Title = MetadataAbsent
	}
	if m.Question == "" {
		m.Question = MetadataAbsent
	}
	if m.Answer == "" {
		m.Answer = MetadataAbsent
	}
	return m
}

// Document is a corpus passage as stored in the vector index.
// Immutable once indexed; the serving path only reads it.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
	// Score is the retrieval similarity in [0,1], set on search results only.
	Score float64
}
