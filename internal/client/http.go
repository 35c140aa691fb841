package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// HTTPClient talks to the Question and Knowledge services over HTTP/JSON.
// Calls are fire-once: no retries, no idempotency keys.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	observe func(CallInfo)
}

var _ Service = (*HTTPClient)(nil)

// CallInfo describes one completed HTTP exchange.
type CallInfo struct {
	Op         string
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

// WithObserver registers a callback invoked after every exchange.
func WithObserver(fn func(CallInfo)) Option {
	return func(h *HTTPClient) { h.observe = fn }
}

// NewHTTPClient creates a client for the service rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health checks that the service is reachable.
func (h *HTTPClient) Health(ctx context.Context) error {
	_, err := h.do(ctx, OpHealth, http.MethodGet, "/api/health", nil)
	return err
}

func (h *HTTPClient) ListTopics(ctx context.Context) ([]string, error) {
	raw, err := h.do(ctx, OpTopics, http.MethodGet, "/api/topics", nil)
	if err != nil {
		return nil, err
	}
	var resp topicsResponse
	if err := decodeValidated(OpTopics, topicsSchema, raw, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

func (h *HTTPClient) Ingest(ctx context.Context, topic string) error {
	_, err := h.do(ctx, OpIngest, http.MethodPost, "/api/ingest", ingestRequest{TopicName: topic})
	return err
}

func (h *HTTPClient) StartSession(ctx context.Context, userID, topic string) error {
	_, err := h.do(ctx, OpStart, http.MethodPost, "/api/session/start", startRequest{
		UserID:    userID,
		TopicName: topic,
	})
	return err
}

func (h *HTTPClient) NextQuestion(ctx context.Context) (*Question, error) {
	raw, err := h.do(ctx, OpNext, http.MethodGet, "/api/session/next", nil)
	if err != nil {
		return nil, err
	}
	var q Question
	if err := decodeValidated(OpNext, questionSchema, raw, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (h *HTTPClient) Submit(ctx context.Context, questionID, answer string) (*SubmissionResult, error) {
	raw, err := h.do(ctx, OpSubmit, http.MethodPost, "/api/session/submit", submitRequest{
		QuestionID: questionID,
		UserAnswer: answer,
	})
	if err != nil {
		return nil, err
	}
	var res SubmissionResult
	if err := decodeValidated(OpSubmit, submitSchema, raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Status(ctx context.Context) (*SessionStatus, error) {
	raw, err := h.do(ctx, OpStatus, http.MethodGet, "/api/session/status", nil)
	if err != nil {
		return nil, err
	}
	var st SessionStatus
	if err := decodeValidated(OpStatus, statusSchema, raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (h *HTTPClient) Graph(ctx context.Context) (*GraphData, error) {
	raw, err := h.do(ctx, OpGraph, http.MethodGet, "/api/kb/graph", nil)
	if err != nil {
		return nil, err
	}
	var g GraphData
	if err := decodeValidated(OpGraph, graphSchema, raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// do performs one exchange and returns the raw success body.
func (h *HTTPClient) do(ctx context.Context, op, method, path string, body any) (raw []byte, err error) {
	info := CallInfo{
		Op:        op,
		Method:    method,
		Path:      path,
		RequestID: uuid.NewString(),
	}
	start := time.Now()
	defer func() {
		if h.observe != nil {
			info.Latency = time.Since(start)
			info.Err = err
			h.observe(info)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, info.RequestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	info.StatusCode = resp.StatusCode

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}
	return raw, nil
}

// errorDetail extracts a human-readable reason from an error body.
// It understands {"detail": "..."} and {"error": {"message": "..."}}.
func errorDetail(raw []byte) string {
	var env struct {
		Detail any `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		text := strings.TrimSpace(string(raw))
		if len(text) > 200 {
			text = text[:200] + "…"
		}
		return text
	}
	switch d := env.Detail.(type) {
	case string:
		return d
	case nil:
	default:
		b, _ := json.Marshal(d)
		return string(b)
	}
	return env.Error.Message
}
