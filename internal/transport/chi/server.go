// Package chi exposes the answering service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
	logpkg "github.com/kailas-cloud/korag/internal/logger"
	healthuc "github.com/kailas-cloud/korag/internal/usecase/health"
	"github.com/kailas-cloud/korag/internal/version"
)

const serviceName = "korag"

// Answerer runs the answering pipeline for one request.
type Answerer interface {
	Answer(ctx context.Context, req domain.AnswerRequest) (domain.AnswerResult, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the answering API.
type Server struct {
	answer          Answerer
	health          *healthuc.Service
	defaultKFewshot int
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server. defaultKFewshot fills in
// requests that omit k_fewshot; non-positive values fall back to
// domain.DefaultKFewshot.
func NewServer(answer Answerer, health *healthuc.Service, defaultKFewshot int, logger *zap.Logger) *Server {
	if defaultKFewshot <= 0 {
		defaultKFewshot = domain.DefaultKFewshot
	}
	s := &Server{
		answer:          answer,
		health:          health,
		defaultKFewshot: defaultKFewshot,
		logger:          logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrResourceUnavailable, http.StatusServiceUnavailable, ErrorCodeResourceUnavailable),
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, ErrorCodeTimeout),
		sentinelHandler(domain.ErrGenerationFailure, http.StatusInternalServerError, ErrorCodeGenerationFailure),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeResourceUnavailable),
	}
	return s
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/rag/answer", s.AnswerQuestion)
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: serviceName,
		Version: version.Version,
		Message: "Few-shot RAG answering service. POST /rag/answer",
	})
}

// AnswerQuestion handles POST /rag/answer.
func (s *Server) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kFewshot := s.defaultKFewshot
	if req.KFewshot != nil {
		kFewshot = *req.KFewshot
	}

	result, err := s.answer.Answer(r.Context(), domain.AnswerRequest{
		Question: req.Question,
		KFewshot: kFewshot,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs := make([]SourceDocumentResponse, len(result.SourceDocuments))
	for i, sd := range result.SourceDocuments {
		docs[i] = SourceDocumentResponse{
			Title:             sd.Title,
			RetrievedQuestion: sd.RetrievedQuestion,
			ContentSnippet:    sd.ContentSnippet,
			IsFewshot:         sd.IsFewshot,
		}
	}

	writeJSON(w, http.StatusOK, AnswerResponse{
		Answer:              result.Answer,
		SourceDocuments:     docs,
		FewShotExamplesUsed: result.FewShotExamplesUsed,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrResourceUnavailable,
		domain.ErrTimeout,
		domain.ErrGenerationFailure,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Request-scoped logger carries the request_id installed by the
	// wide-event middleware.
	logpkg.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
