package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/korag/internal/domain"
	"github.com/kailas-cloud/korag/internal/repository/corpus"
)

// Indexer is the corpus write surface the loader needs.
type Indexer interface {
	EnsureIndex(ctx context.Context, vectorDim int) error
	UpsertBatch(ctx context.Context, docs []corpus.IndexedDocument) error
	Count(ctx context.Context) (int, error)
}

// Config tunes the indexing run.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	// RateLimit bounds embedding calls per second. Zero disables the limit.
	RateLimit    float64
	VectorDim    int
	ShowProgress bool
}

// Stats summarizes a completed run.
type Stats struct {
	Contexts    int
	Chunks      int
	TotalTokens int
	// IndexSize is the document count reported by the index after the
	// run. Smaller than Chunks when re-runs overwrote existing IDs.
	IndexSize int
}

// Loader embeds and indexes a KorQuAD corpus.
type Loader struct {
	embedder domain.BatchEmbedder
	indexer  Indexer
	cfg      Config
	logger   *zap.Logger
}

// New creates a Loader.
func New(embedder domain.BatchEmbedder, indexer Indexer, cfg Config, logger *zap.Logger) *Loader {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 64
	}
	return &Loader{embedder: embedder, indexer: indexer, cfg: cfg, logger: logger}
}

// Run reads the dataset at path and indexes every chunk.
func (l *Loader) Run(ctx context.Context, path string) (Stats, error) {
	docs, err := ReadKorQuAD(path)
	if err != nil {
		return Stats{}, err
	}
	l.logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("unique_contexts", len(docs)),
	)

	chunks := l.chunkAll(docs)
	l.logger.Info("Contexts chunked",
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", l.cfg.ChunkSize),
		zap.Int("chunk_overlap", l.cfg.ChunkOverlap),
	)

	if err := l.indexer.EnsureIndex(ctx, l.cfg.VectorDim); err != nil {
		return Stats{}, fmt.Errorf("ensure index: %w", err)
	}

	stats := Stats{Contexts: len(docs), Chunks: len(chunks)}
	if len(chunks) == 0 {
		return stats, nil
	}

	var limiter *rate.Limiter
	if l.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(l.cfg.RateLimit), 1)
	}

	bar := l.newProgressBar(len(chunks))
	for start := 0; start < len(chunks); start += l.cfg.BatchSize {
		end := min(start+l.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return stats, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		tokens, err := l.indexBatch(ctx, batch)
		if err != nil {
			return stats, fmt.Errorf("batch at offset %d: %w", start, err)
		}
		stats.TotalTokens += tokens

		if bar != nil {
			_ = bar.Add(len(batch))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// The index is already written at this point; a failed count only
	// degrades the report.
	if n, err := l.indexer.Count(ctx); err != nil {
		l.logger.Warn("Could not count indexed documents", zap.Error(err))
	} else {
		stats.IndexSize = n
	}

	return stats, nil
}

// chunkAll splits every context, carrying its metadata onto each chunk.
// Chunk IDs are content hashes so re-runs overwrite rather than duplicate.
func (l *Loader) chunkAll(docs []domain.Document) []domain.Document {
	var out []domain.Document
	for _, doc := range docs {
		for _, piece := range splitText(doc.Content, l.cfg.ChunkSize, l.cfg.ChunkOverlap) {
			out = append(out, domain.Document{
				ID:       contentID(piece),
				Content:  piece,
				Metadata: doc.Metadata,
			})
		}
	}
	return out
}

func (l *Loader) indexBatch(ctx context.Context, batch []domain.Document) (int, error) {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	res, err := l.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("embed: got %d vectors for %d texts", len(res.Embeddings), len(batch))
	}

	indexed := make([]corpus.IndexedDocument, len(batch))
	for i, doc := range batch {
		indexed[i] = corpus.IndexedDocument{Doc: doc, Vector: res.Embeddings[i]}
	}

	if err := l.indexer.UpsertBatch(ctx, indexed); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return res.TotalTokens, nil
}

func (l *Loader) newProgressBar(total int) *progressbar.ProgressBar {
	if !l.cfg.ShowProgress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Indexing corpus"),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
}

func contentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}
