package client

// DoneID is the question ID the service returns once every concept in the
// topic is mastered. It is a sentinel, not a real question.
const DoneID = "DONE"

// Question is a single practice question served by the Question Service.
// It is replaced wholesale on every next-question call.
type Question struct {
	ID         string   `json:"id"`
	Content    string   `json:"content,omitempty"`
	Options    []string `json:"options,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Done reports whether q is the topic-completion sentinel.
func (q *Question) Done() bool {
	return q != nil && q.ID == DoneID
}

// SubmissionResult is the service's verdict on a submitted answer.
type SubmissionResult struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`

	// CorrectAnswer is only set when the service chooses to reveal it.
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// SessionStatus is the informational progress summary shown next to a
// question. It never drives control flow.
type SessionStatus struct {
	Active       bool   `json:"active"`
	Breadcrumb   string `json:"breadcrumb,omitempty"`
	Streak       int    `json:"streak"`
	TargetStreak int    `json:"target_streak,omitempty"`
	MasteredAll  bool   `json:"mastered_all,omitempty"`
}

// Element groups used by the knowledge graph payload.
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// GraphElement is one node or edge of the knowledge graph payload.
// The group field is optional; edge entries can be recognized by their
// source/target data alone.
type GraphElement struct {
	Group string      `json:"group,omitempty"`
	Data  ElementData `json:"data"`
}

// ElementData carries the fields of either a node or an edge.
type ElementData struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
	Status string `json:"status,omitempty"`
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// IsEdge reports whether the element describes an edge.
func (e GraphElement) IsEdge() bool {
	switch e.Group {
	case GroupEdges:
		return true
	case GroupNodes:
		return false
	}
	return e.Data.Source != "" && e.Data.Target != ""
}

// GraphData is the full node/edge set for the active topic.
type GraphData struct {
	Elements []GraphElement `json:"elements"`
}

type topicsResponse struct {
	Topics []string `json:"topics"`
}

type ingestRequest struct {
	TopicName string `json:"topic_name"`
}

type startRequest struct {
	UserID    string `json:"user_id"`
	TopicName string `json:"topic_name"`
}

type submitRequest struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}
