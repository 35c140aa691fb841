package client

import "context"

// Operation names used in errors and in the request journal.
const (
	OpHealth = "health"
	OpTopics = "list-topics"
	OpIngest = "ingest"
	OpStart  = "start-session"
	OpNext   = "next-question"
	OpSubmit = "submit-answer"
	OpStatus = "session-status"
	OpGraph  = "knowledge-graph"
)

// QuestionService is the session side of the backend: topic discovery,
// session start and the question/answer loop.
type QuestionService interface {
	ListTopics(ctx context.Context) ([]string, error)
	Ingest(ctx context.Context, topic string) error
	StartSession(ctx context.Context, userID, topic string) error
	NextQuestion(ctx context.Context) (*Question, error)
	Submit(ctx context.Context, questionID, answer string) (*SubmissionResult, error)
	Status(ctx context.Context) (*SessionStatus, error)
}

// KnowledgeService serves the mastery graph of the active topic.
type KnowledgeService interface {
	Graph(ctx context.Context) (*GraphData, error)
}

// Service is the full backend surface the client talks to.
type Service interface {
	QuestionService
	KnowledgeService
}
