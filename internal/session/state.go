package session

import (
	"github.com/AMANN-N/smart-practice/internal/client"
	"github.com/AMANN-N/smart-practice/internal/ui/components"
)

// Phase represents where the controller is in the session lifecycle.
type Phase int

const (
	PhaseIdle              Phase = iota // Topic picker shown, no session
	PhaseStarting                       // Start (or ingest) request in flight
	PhaseTopicSelected                  // Session started, question owed
	PhaseAwaitingQuestion               // Next-question request in flight
	PhaseQuestionDisplayed              // Options enabled, awaiting an answer
	PhaseSubmitting                     // Submit request in flight
	PhaseFeedbackDisplayed              // Verdict shown, waiting for Continue
	PhaseDone                           // Topic mastered
)

var phaseNames = [...]string{
	PhaseIdle:              "idle",
	PhaseStarting:          "starting",
	PhaseTopicSelected:     "topic-selected",
	PhaseAwaitingQuestion:  "awaiting-question",
	PhaseQuestionDisplayed: "question-displayed",
	PhaseSubmitting:        "submitting",
	PhaseFeedbackDisplayed: "feedback-displayed",
	PhaseDone:              "done",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// InSession reports whether a session has been started and not discarded.
func (p Phase) InSession() bool {
	return p >= PhaseTopicSelected
}

// State is the controller-owned session state.
type State struct {
	// TopicName is set once the start request succeeds.
	TopicName string

	// CurrentQuestion is the last question received, replaced wholesale on
	// every next-question result. Nil before the first one arrives.
	CurrentQuestion *client.Question

	// Submitting is the reentrancy guard. It is true for exactly the
	// lifetime of one outstanding submit.
	Submitting bool
}

// Feedback is the verdict shown after a submit succeeds.
type Feedback struct {
	Correct       bool
	Text          string
	CorrectAnswer string
}

// Panel is the renderable view of the controller. Screens draw it; they
// never mutate it.
type Panel struct {
	// Topic picker.
	PickerVisible bool
	Topics        components.Menu
	TopicsLoading bool
	TopicsErr     string
	Busy          string // e.g. "Starting algebra…"

	// Question panel.
	QuestionVisible bool
	Loading         bool
	Content         string
	Difficulty      string
	Options         components.OptionList
	Feedback        *Feedback
	Continue        components.Button
	Retry           components.Button

	// Completion view.
	Completed bool
	Restart   components.Button

	// Status line, best-effort.
	Breadcrumb   string
	Streak       int
	TargetStreak int

	// Alert is the last user-visible failure. Cleared by the next action.
	Alert string
}
