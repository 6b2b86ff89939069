package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/config"
	dbRedis "github.com/kailas-cloud/korag/internal/db/redis"
	"github.com/kailas-cloud/korag/internal/domain"
	logpkg "github.com/kailas-cloud/korag/internal/logger"
	"github.com/kailas-cloud/korag/internal/metrics"
	"github.com/kailas-cloud/korag/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/korag/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/korag/internal/transport/openai"
	"github.com/kailas-cloud/korag/internal/usecase/answer"
	"github.com/kailas-cloud/korag/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/korag/internal/usecase/health"
	"github.com/kailas-cloud/korag/internal/usecase/resource"
	"github.com/kailas-cloud/korag/internal/usecase/retrieval"
	"github.com/kailas-cloud/korag/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting korag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	corpusRepo := corpus.New(store, cfg.Storage.KeyPrefix).WithHNSW(corpus.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:       cfg.Generation.APIKey,
		BaseURL:      cfg.Generation.BaseURL,
		Model:        cfg.Generation.Model,
		MaxNewTokens: cfg.Generation.MaxNewTokens,
		Seed:         cfg.Generation.Seed,
		Logger:       logger,
	})

	registry := resource.NewRegistry(resource.Builders{
		Embedder:  embedderBuilder(embedder),
		Index:     indexBuilder(corpusRepo),
		Generator: generatorBuilder(generator),
	}, logger)

	// Pre-warm resources. Failing here halts startup: run korag-load
	// first so the corpus index exists. Set RAG_SKIP_PREWARM=1 to defer
	// construction to the first request instead.
	if os.Getenv("RAG_SKIP_PREWARM") == "" {
		warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := registry.InitializeAll(warmCtx); err != nil {
			warmCancel()
			logger.Fatal("Resource pre-warm failed", zap.Error(err))
		}
		warmCancel()
		logger.Info("All resources initialized")
	} else {
		logger.Info("Pre-warm skipped, resources will initialize on first request")
	}

	retrievalSvc := retrieval.New(registry)
	invoker := generation.NewInvoker(registry, logger)
	answerSvc := answer.New(
		retrievalSvc, invoker,
		time.Duration(cfg.RAG.AnswerTimeoutSec)*time.Second,
		logger,
	)
	healthSvc := healthuc.New(store, corpusRepo, embedder, generator)

	server := chiTransport.NewServer(answerSvc, healthSvc, cfg.RAG.DefaultKFewshot, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(jsonRecoverer())
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embedderBuilder validates the provider on first use. Connectivity
// failures are reported as retryable so lazy construction can
// re-attempt on the next request.
func embedderBuilder(e *openaiTransport.Embedder) func(ctx context.Context) (domain.Embedder, error) {
	return func(ctx context.Context) (domain.Embedder, error) {
		if err := e.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("embedding provider: %w: %w", domain.ErrResourceUnavailable, err)
		}
		return e, nil
	}
}

// indexBuilder hands out the corpus index once it exists and holds
// documents. Before the loader has run, CheckReady reports
// ErrResourceUnavailable and the registry keeps retrying.
func indexBuilder(repo *corpus.Repo) func(ctx context.Context) (resource.Index, error) {
	return func(ctx context.Context) (resource.Index, error) {
		if err := repo.CheckReady(ctx); err != nil {
			return nil, fmt.Errorf("corpus index: %w", err)
		}
		return repo, nil
	}
}

func generatorBuilder(g *openaiTransport.Generator) func(ctx context.Context) (domain.Generator, error) {
	return func(ctx context.Context) (domain.Generator, error) {
		if err := g.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("generation provider: %w: %w", domain.ErrResourceUnavailable, err)
		}
		return g, nil
	}
}

// jsonRecoverer converts panics into a JSON 500 body. It runs inside
// wideEventMiddleware so the panic log carries the request_id and the
// canonical request line still records the 500.
func jsonRecoverer() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logpkg.FromContext(r.Context()).Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware installs a request-scoped logger keyed by request_id,
// echoes X-Request-ID to the client, and emits one canonical log line per
// request after the handler returns.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("bytes_in", r.ContentLength),
				zap.Int("bytes_out", ww.BytesWritten()),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}
