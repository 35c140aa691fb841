package session

import "github.com/AMANN-N/smart-practice/internal/client"

// Every result carries the identity of the request that produced it so
// late arrivals can be recognized and dropped.

// topicsLoadedMsg is sent when the topic list request completes.
type topicsLoadedMsg struct {
	Topics []string
	Err    error
}

// ingestDoneMsg is sent when an ingest request completes.
type ingestDoneMsg struct {
	epoch int
	Topic string
	Err   error
}

// sessionStartedMsg is sent when a start request completes.
type sessionStartedMsg struct {
	epoch int
	Topic string
	Err   error
}

// questionLoadedMsg is sent when a next-question request completes.
type questionLoadedMsg struct {
	epoch    int
	seq      int
	Question *client.Question
	Err      error
}

// statusLoadedMsg is sent when the best-effort status poll completes.
type statusLoadedMsg struct {
	epoch  int
	seq    int
	Status *client.SessionStatus
	Err    error
}

// submitResultMsg is sent when a submit request completes.
type submitResultMsg struct {
	seq        int
	QuestionID string
	Result     *client.SubmissionResult
	Err        error
}
