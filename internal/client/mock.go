package client

import (
	"context"
	"sync"
)

// MockCall records one call made against a MockService.
type MockCall struct {
	Op   string
	Args []string
}

// MockService is a deterministic Service for testing. Each operation
// returns its configured result; Next and Submit consume queued responses
// in FIFO order.
type MockService struct {
	mu sync.Mutex

	Topics    []string
	TopicsErr error
	IngestErr error
	StartErr  error
	StatusErr error
	GraphErr  error

	StatusResult *SessionStatus
	GraphResult  *GraphData

	questions []mockQuestion
	results   []mockResult

	Calls []MockCall
}

type mockQuestion struct {
	q   *Question
	err error
}

type mockResult struct {
	res *SubmissionResult
	err error
}

var _ Service = (*MockService)(nil)

// NewMockService creates an empty MockService.
func NewMockService() *MockService {
	return &MockService{}
}

// QueueQuestion appends a NextQuestion response.
func (m *MockService) QueueQuestion(q *Question, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, mockQuestion{q: q, err: err})
}

// QueueResult appends a Submit response.
func (m *MockService) QueueResult(res *SubmissionResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{res: res, err: err})
}

// CallCount returns how many times op was called.
func (m *MockService) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call of op, if any.
func (m *MockService) LastCall(op string) (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Op == op {
			return m.Calls[i], true
		}
	}
	return MockCall{}, false
}

func (m *MockService) record(op string, args ...string) {
	m.Calls = append(m.Calls, MockCall{Op: op, Args: args})
}

func (m *MockService) ListTopics(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpTopics)
	return m.Topics, m.TopicsErr
}

func (m *MockService) Ingest(_ context.Context, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpIngest, topic)
	return m.IngestErr
}

func (m *MockService) StartSession(_ context.Context, userID, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpStart, userID, topic)
	return m.StartErr
}

// NextQuestion returns the next queued question, or a ServiceError when
// the queue is empty.
func (m *MockService) NextQuestion(context.Context) (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpNext)

	if len(m.questions) == 0 {
		return nil, &ServiceError{Op: OpNext, StatusCode: 400, Detail: "no question queued"}
	}
	next := m.questions[0]
	m.questions = m.questions[1:]
	return next.q, next.err
}

// Submit returns the next queued result, or a ServiceError when the queue
// is empty.
func (m *MockService) Submit(_ context.Context, questionID, answer string) (*SubmissionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpSubmit, questionID, answer)

	if len(m.results) == 0 {
		return nil, &ServiceError{Op: OpSubmit, StatusCode: 400, Detail: "no result queued"}
	}
	next := m.results[0]
	m.results = m.results[1:]
	return next.res, next.err
}

func (m *MockService) Status(context.Context) (*SessionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpStatus)
	if m.StatusErr != nil {
		return nil, m.StatusErr
	}
	if m.StatusResult == nil {
		return &SessionStatus{Active: true}, nil
	}
	return m.StatusResult, nil
}

func (m *MockService) Graph(context.Context) (*GraphData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(OpGraph)
	if m.GraphErr != nil {
		return nil, m.GraphErr
	}
	if m.GraphResult == nil {
		return &GraphData{}, nil
	}
	return m.GraphResult, nil
}
