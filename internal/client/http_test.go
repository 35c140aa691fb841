package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMANN-N/smart-practice/internal/store"
)

// newTestServer serves body with status for exactly one path and records
// the last request it saw.
func newTestServer(t *testing.T, method, path string, status int, body string) (*HTTPClient, *http.Request, *[]byte) {
	t.Helper()
	var (
		seen    http.Request
		payload []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method || r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		seen = *r.Clone(context.Background())
		payload, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL + "/"), &seen, &payload
}

func TestListTopics(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/topics", 200, `{"topics":["algebra","graphs"]}`)

	topics, err := c.ListTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "graphs"}, topics)
}

func TestStartSessionSendsUserAndTopic(t *testing.T) {
	c, req, payload := newTestServer(t, http.MethodPost, "/api/session/start", 200,
		`{"message":"Session started","session_id":"abc"}`)

	require.NoError(t, c.StartSession(context.Background(), "user_web", "algebra"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(*payload, &body))
	assert.Equal(t, map[string]string{"user_id": "user_web", "topic_name": "algebra"}, body)
	assert.Contains(t, req.Header.Get("Content-Type"), "application/json")
	assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
}

func TestNextQuestion(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/session/next", 200,
		`{"id":"q1","content":"2+2?","options":["3","4"],"difficulty":"beginner"}`)

	q, err := c.NextQuestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Question{ID: "q1", Content: "2+2?", Options: []string{"3", "4"}, Difficulty: "beginner"}, q)
	assert.False(t, q.Done())
}

func TestNextQuestionDone(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/session/next", 200,
		`{"id":"DONE","content":"All concepts mastered!","options":[],"difficulty":"completed"}`)

	q, err := c.NextQuestion(context.Background())
	require.NoError(t, err)
	assert.True(t, q.Done())
}

func TestSubmit(t *testing.T) {
	c, _, payload := newTestServer(t, http.MethodPost, "/api/session/submit", 200,
		`{"is_correct":false,"feedback":"Not quite.","correct_answer":"4"}`)

	res, err := c.Submit(context.Background(), "q1", "3")
	require.NoError(t, err)
	assert.Equal(t, &SubmissionResult{IsCorrect: false, Feedback: "Not quite.", CorrectAnswer: "4"}, res)
	assert.JSONEq(t, `{"question_id":"q1","user_answer":"3"}`, string(*payload))
}

func TestStatus(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/session/status", 200,
		`{"active":true,"breadcrumb":"Math / Algebra","streak":2,"target_streak":3}`)

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SessionStatus{Active: true, Breadcrumb: "Math / Algebra", Streak: 2, TargetStreak: 3}, st)
}

func TestGraphWithoutGroup(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/kb/graph", 200, `{"elements":[
		{"data":{"id":"root","label":"Math","status":"pending","type":"topic"}},
		{"data":{"id":"a","label":"Add","status":"active","type":"leaf"}},
		{"data":{"source":"root","target":"a"}}
	]}`)

	g, err := c.Graph(context.Background())
	require.NoError(t, err)
	require.Len(t, g.Elements, 3)
	assert.False(t, g.Elements[0].IsEdge())
	assert.False(t, g.Elements[1].IsEdge())
	assert.True(t, g.Elements[2].IsEdge())
	assert.Equal(t, "active", g.Elements[1].Data.Status)
}

func TestServiceErrorCarriesDetail(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodPost, "/api/session/start", 404,
		`{"detail":"Knowledge base for 'x' not found. Please ingest first."}`)

	err := c.StartSession(context.Background(), "user_web", "x")
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, OpStart, svcErr.Op)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Contains(t, svcErr.Detail, "not found")
	assert.Contains(t, err.Error(), "404")
}

func TestInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong type", `{"topics":"algebra"}`},
		{"missing field", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestServer(t, http.MethodGet, "/api/topics", 200, tt.body)

			_, err := c.ListTopics(context.Background())
			var invalid *InvalidResponseError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, OpTopics, invalid.Op)
		})
	}
}

func TestQuestionWithoutIDIsInvalid(t *testing.T) {
	c, _, _ := newTestServer(t, http.MethodGet, "/api/session/next", 200, `{"content":"orphan"}`)

	_, err := c.NextQuestion(context.Background())
	var invalid *InvalidResponseError
	assert.True(t, errors.As(err, &invalid))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPClient(url).Health(context.Background())
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, OpHealth, netErr.Op)
}

func TestDeadlineIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL).NextQuestion(ctx)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"No active session"}`))
	}))
	defer srv.Close()

	var calls []CallInfo
	c := NewHTTPClient(srv.URL, WithObserver(func(info CallInfo) { calls = append(calls, info) }))

	require.NoError(t, c.Health(context.Background()))
	_, err := c.NextQuestion(context.Background())
	require.Error(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, OpHealth, calls[0].Op)
	assert.Equal(t, 200, calls[0].StatusCode)
	assert.NoError(t, calls[0].Err)
	assert.Equal(t, OpNext, calls[1].Op)
	assert.Equal(t, 400, calls[1].StatusCode)
	assert.Error(t, calls[1].Err)
	assert.NotEqual(t, calls[0].RequestID, calls[1].RequestID)
}

func TestRecorderJournalsCalls(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer s.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer srv.Close()

	rec := NewRecorder(s.Journal(), nil)
	c := NewHTTPClient(srv.URL, WithObserver(rec.Observe))
	_, err = c.Graph(context.Background())
	require.Error(t, err)

	events, err := s.Journal().Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, OpGraph, events[0].Operation)
	assert.Equal(t, "/api/kb/graph", events[0].Path)
	assert.Equal(t, 500, events[0].StatusCode)
	assert.False(t, events[0].Success)
	assert.Contains(t, events[0].ErrorMessage, "boom")
	assert.NotEmpty(t, events[0].RequestID)
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"fastapi detail", `{"detail":"Session not found"}`, "Session not found"},
		{"validation detail", `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"error envelope", `{"error":{"message":"bad topic"}}`, "bad topic"},
		{"plain text", "  upstream down \n", "upstream down"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorDetail([]byte(tt.raw)))
		})
	}
}
