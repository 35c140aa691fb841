package devserver

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultMasteryStreak is the number of consecutive correct answers that
// promotes a concept to advanced questions and, at advanced, masters it.
const DefaultMasteryStreak = 3

// DoneID is the question ID served once every leaf is mastered.
const DoneID = "DONE"

var (
	// ErrUnknownTopic is returned when starting a session on a topic with
	// no knowledge base.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrNoSession is returned by session calls before a session starts.
	ErrNoSession = errors.New("session not initialized")

	// ErrUnknownQuestion is returned when a submitted question does not
	// belong to the active concept.
	ErrUnknownQuestion = errors.New("question not found in active node")
)

// Question is a served question without its answer.
type Question struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

// Result is the verdict on a submitted answer.
type Result struct {
	IsCorrect     bool    `json:"is_correct"`
	Feedback      string  `json:"feedback"`
	CorrectAnswer *string `json:"correct_answer"`
}

// Status summarizes progress on the active concept.
type Status struct {
	Active       bool   `json:"active"`
	Breadcrumb   string `json:"breadcrumb,omitempty"`
	Streak       int    `json:"streak"`
	TargetStreak int    `json:"target_streak,omitempty"`
	MasteredAll  bool   `json:"mastered_all,omitempty"`
}

// Element is one node or edge of the graph payload.
type Element struct {
	Data map[string]string `json:"data"`
}

type skillState struct {
	attempts int
	streak   int
	history  []string
}

type practiceSession struct {
	id       string
	userID   string
	kb       *KnowledgeBase
	active   string // active leaf ID, empty when none is selected
	states   map[string]*skillState
	coverage map[string]bool
}

// Tutor holds the knowledge bases and the single active practice session.
// It is safe for concurrent use.
type Tutor struct {
	mu      sync.Mutex
	kbs     map[string]*KnowledgeBase
	session *practiceSession
	streak  int
}

// NewTutor creates a Tutor over kbs. A non-positive streak uses
// DefaultMasteryStreak.
func NewTutor(kbs map[string]*KnowledgeBase, streak int) *Tutor {
	if streak <= 0 {
		streak = DefaultMasteryStreak
	}
	if kbs == nil {
		kbs = make(map[string]*KnowledgeBase)
	}
	return &Tutor{kbs: kbs, streak: streak}
}

// Topics lists the known topics in name order.
func (t *Tutor) Topics() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.kbs))
	for name := range t.kbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ingest makes topic available, creating a stub knowledge base when none
// exists. Existing knowledge bases are kept as they are.
func (t *Tutor) Ingest(topic string) (created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.kbs[topic]; ok {
		return false
	}
	t.kbs[topic] = stubKnowledgeBase(topic)
	return true
}

// Start replaces the active session with a fresh one on topic and returns
// its ID.
func (t *Tutor) Start(userID, topic string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kb, ok := t.kbs[topic]
	if !ok {
		return "", fmt.Errorf("%w: knowledge base for %q not found, run ingestion first", ErrUnknownTopic, topic)
	}
	t.session = &practiceSession{
		id:       uuid.NewString(),
		userID:   userID,
		kb:       kb,
		states:   make(map[string]*skillState),
		coverage: make(map[string]bool),
	}
	return t.session.id, nil
}

// Next serves the next question for the active concept, selecting the
// first unmastered leaf in document order when no concept is active.
func (t *Tutor) Next() (*Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.session
	if s == nil {
		return nil, ErrNoSession
	}

	leaf := t.activeLeaf(s)
	if leaf == nil {
		return &Question{
			ID:         DoneID,
			Content:    "Topic Mastered! You have completed all available concepts.",
			Options:    []string{},
			Difficulty: "completed",
		}, nil
	}

	st := s.state(leaf.ID)
	q, ok := pickQuestion(leaf, t.difficulty(st), st)
	if !ok {
		return nil, fmt.Errorf("no questions available for %q", leaf.Name)
	}
	return &Question{ID: q.ID, Content: q.Content, Options: q.Options, Difficulty: q.Difficulty}, nil
}

// Submit grades answer against question questionID of the active concept
// and updates the streak, mastering the concept when an advanced answer
// completes the streak.
func (t *Tutor) Submit(questionID, answer string) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.session
	if s == nil {
		return nil, ErrNoSession
	}
	leaf, ok := s.kb.Node(s.active)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	idx := slices.IndexFunc(leaf.Questions, func(q SeedQuestion) bool { return q.ID == questionID })
	if idx < 0 {
		return nil, ErrUnknownQuestion
	}
	q := leaf.Questions[idx]

	st := s.state(leaf.ID)
	st.attempts++
	st.history = append(st.history, questionID)

	if !isCorrect(q, answer) {
		st.streak = 0
		return &Result{
			Feedback: fmt.Sprintf("Incorrect. Correct answer: %s.\n%s", q.Answer, q.Explanation),
		}, nil
	}

	st.streak++
	feedback := "Correct! " + q.Explanation
	if st.streak >= t.streak {
		switch q.Difficulty {
		case Intermediate:
			feedback += "\nFast-track: moving to advanced!"
		case Advanced:
			feedback += "\nConcept mastered!"
			s.coverage[leaf.ID] = true
			s.active = ""
		}
	}
	return &Result{IsCorrect: true, Feedback: feedback}, nil
}

// Status reports progress on the active concept.
func (t *Tutor) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.session
	if s == nil {
		return Status{}
	}
	leaf, ok := s.kb.Node(s.active)
	if !ok {
		return Status{Active: true, MasteredAll: true}
	}
	streak := 0
	if st, ok := s.states[leaf.ID]; ok {
		streak = st.streak
	}
	return Status{
		Active:       true,
		Breadcrumb:   strings.ReplaceAll(leaf.Path, " > ", " / "),
		Streak:       streak,
		TargetStreak: t.streak,
	}
}

// Graph returns the concept tree of the session topic in breadth-first
// order. Each node is followed by the edge from its parent.
func (t *Tutor) Graph() []Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.session
	elements := []Element{}
	if s == nil {
		return elements
	}

	queue := []*KnowledgeNode{s.kb.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		status := "pending"
		switch {
		case n.ID == s.active:
			status = "active"
		case s.coverage[n.ID]:
			status = "mastered"
		}
		kind := "topic"
		if n.IsLeaf() {
			kind = "leaf"
		}
		elements = append(elements, Element{Data: map[string]string{
			"id":     n.ID,
			"label":  n.Name,
			"status": status,
			"type":   kind,
		}})
		if n.ParentID != "" {
			elements = append(elements, Element{Data: map[string]string{
				"source": n.ParentID,
				"target": n.ID,
			}})
		}
		queue = append(queue, n.Children...)
	}
	return elements
}

// activeLeaf returns the active concept, selecting the first uncovered
// leaf in depth-first document order when none is active.
func (t *Tutor) activeLeaf(s *practiceSession) *KnowledgeNode {
	if n, ok := s.kb.Node(s.active); ok {
		return n
	}
	stack := []*KnowledgeNode{s.kb.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() && !s.coverage[n.ID] {
			s.active = n.ID
			return n
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return nil
}

// difficulty picks the level of the next question from the streak.
func (t *Tutor) difficulty(st *skillState) string {
	switch {
	case len(st.history) == 0:
		return Intermediate
	case st.streak >= t.streak:
		return Advanced
	case st.streak == 0:
		return Beginner
	}
	return Intermediate
}

func (s *practiceSession) state(id string) *skillState {
	st, ok := s.states[id]
	if !ok {
		st = &skillState{}
		s.states[id] = st
	}
	return st
}

// pickQuestion returns the first unseen question at difficulty. Once the
// level is exhausted it cycles through it, and a level with no questions
// at all falls back to any question of the concept.
func pickQuestion(leaf *KnowledgeNode, difficulty string, st *skillState) (SeedQuestion, bool) {
	pool := leaf.QuestionsAt(difficulty)
	for _, q := range pool {
		if !slices.Contains(st.history, q.ID) {
			return q, true
		}
	}
	if len(pool) == 0 {
		pool = leaf.Questions
	}
	if len(pool) == 0 {
		return SeedQuestion{}, false
	}
	return pool[st.attempts%len(pool)], true
}

// isCorrect accepts the answer key itself or, when the key is an option
// letter, the text of that option.
func isCorrect(q SeedQuestion, answer string) bool {
	answer = strings.TrimSpace(answer)
	key := strings.ToUpper(strings.TrimSpace(q.Answer))
	if strings.ToUpper(answer) == key {
		return true
	}
	idx := slices.Index(q.Options, answer)
	if idx < 0 || idx > 25 {
		return false
	}
	return string(rune('A'+idx)) == key
}
