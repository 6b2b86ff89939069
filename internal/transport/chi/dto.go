package chi

// ErrorCode identifies an error class in API responses.
type ErrorCode string

const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeResourceUnavailable ErrorCode = "resource_unavailable"
	ErrorCodeGenerationFailure   ErrorCode = "generation_failure"
	ErrorCodeTimeout             ErrorCode = "timeout"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AnswerRequest is the POST /rag/answer body. KFewshot is optional and
// defaults server-side when absent.
type AnswerRequest struct {
	Question string `json:"question"`
	KFewshot *int   `json:"k_fewshot,omitempty"`
}

// SourceDocumentResponse describes one document that informed the answer.
type SourceDocumentResponse struct {
	Title             string `json:"title"`
	RetrievedQuestion string `json:"retrieved_question"`
	ContentSnippet    string `json:"content_snippet"`
	IsFewshot         bool   `json:"is_fewshot"`
}

// AnswerResponse is the POST /rag/answer response body.
type AnswerResponse struct {
	Answer              string                   `json:"answer"`
	SourceDocuments     []SourceDocumentResponse `json:"source_documents"`
	FewShotExamplesUsed int                      `json:"few_shot_examples_used"`
}

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RootResponse is the GET / response body.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Message string `json:"message"`
}
