// Command korag-load builds the corpus index from a KorQuAD 1.0 dump.
// Run it once before starting the API server; re-runs are idempotent
// because chunk keys are content hashes.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/config"
	dbRedis "github.com/kailas-cloud/korag/internal/db/redis"
	"github.com/kailas-cloud/korag/internal/loader"
	logpkg "github.com/kailas-cloud/korag/internal/logger"
	"github.com/kailas-cloud/korag/internal/metrics"
	"github.com/kailas-cloud/korag/internal/repository/corpus"
	openaiTransport "github.com/kailas-cloud/korag/internal/transport/openai"
	"github.com/kailas-cloud/korag/internal/version"
)

func main() {
	var (
		datasetPath string
		batchSize   int
		rateLimit   float64
		noProgress  bool
		reset       bool
	)
	flag.StringVar(&datasetPath, "dataset", "data/KorQuAD_v1.0_train.json", "Path to the KorQuAD 1.0 JSON dump")
	flag.IntVar(&batchSize, "batch-size", 64, "Chunks per embedding batch")
	flag.Float64Var(&rateLimit, "rate-limit", 0, "Embedding batches per second (0 = unlimited)")
	flag.BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	flag.BoolVar(&reset, "reset", false, "Drop the corpus index and delete stored documents before loading")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting corpus loader",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("dataset", datasetPath),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterPipelineMetrics()

	corpusRepo := corpus.New(store, cfg.Storage.KeyPrefix).WithHNSW(corpus.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	if reset {
		logger.Info("Resetting corpus", zap.String("key_prefix", cfg.Storage.KeyPrefix))
		if err := corpusRepo.Reset(ctx); err != nil {
			logger.Fatal("Corpus reset failed", zap.Error(err))
		}
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if batchSize > cfg.Index.MaxBatchSize {
		batchSize = cfg.Index.MaxBatchSize
	}

	l := loader.New(embedder, corpusRepo, loader.Config{
		ChunkSize:    cfg.Index.ChunkSize,
		ChunkOverlap: cfg.Index.ChunkOverlap,
		BatchSize:    batchSize,
		RateLimit:    rateLimit,
		VectorDim:    cfg.Embedding.Dimensions,
		ShowProgress: !noProgress,
	}, logger)

	start := time.Now()
	stats, err := l.Run(ctx, datasetPath)
	if err != nil {
		logger.Fatal("Indexing failed", zap.Error(err))
	}

	logger.Info("Indexing complete",
		zap.Int("contexts", stats.Contexts),
		zap.Int("chunks", stats.Chunks),
		zap.Int("total_tokens", stats.TotalTokens),
		zap.Int("index_size", stats.IndexSize),
		zap.Duration("elapsed", time.Since(start)),
	)
}
