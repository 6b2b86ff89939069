// Package sdk is a small Go client for the korag HTTP API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// ErrAPIError wraps non-2xx responses from the service.
var ErrAPIError = errors.New("korag: api error")

// APIError carries the decoded error body of a failed request.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("korag: api error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPIError }

// SourceDocument describes one document that informed an answer.
type SourceDocument struct {
	Title             string `json:"title"`
	RetrievedQuestion string `json:"retrieved_question"`
	ContentSnippet    string `json:"content_snippet"`
	IsFewshot         bool   `json:"is_fewshot"`
}

// Answer is the result of an answering request.
type Answer struct {
	Answer              string           `json:"answer"`
	SourceDocuments     []SourceDocument `json:"source_documents"`
	FewShotExamplesUsed int              `json:"few_shot_examples_used"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Client talks to a korag server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sends a bearer token with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type answerRequest struct {
	Question string `json:"question"`
	KFewshot *int   `json:"k_fewshot,omitempty"`
}

// Ask answers a question with the server-side default number of
// few-shot examples.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	return c.ask(ctx, answerRequest{Question: question})
}

// AskWithK answers a question with an explicit few-shot count.
func (c *Client) AskWithK(ctx context.Context, question string, kFewshot int) (Answer, error) {
	return c.ask(ctx, answerRequest{Question: question, KFewshot: &kFewshot})
}

func (c *Client) ask(ctx context.Context, reqBody answerRequest) (Answer, error) {
	var out Answer
	if err := c.post(ctx, "/rag/answer", reqBody, &out); err != nil {
		return Answer{}, err
	}
	return out, nil
}

// Health fetches the service health report. A degraded service
// surfaces as an *APIError with status 503.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.get(ctx, "/health", &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("korag: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("korag: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("korag: build request: %w", err)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("korag: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("korag: decode response: %w", err)
		}
		return nil
	}

	// Health endpoints return a body even on 503; decode what we can
	// before reporting the failure.
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
		apiErr.Code = errBody.Code
		apiErr.Message = errBody.Message
	}
	return apiErr
}
