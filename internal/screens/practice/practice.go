package practice

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/client"
	"github.com/AMANN-N/smart-practice/internal/graphview"
	"github.com/AMANN-N/smart-practice/internal/router"
	"github.com/AMANN-N/smart-practice/internal/screen"
	"github.com/AMANN-N/smart-practice/internal/screens/ingest"
	"github.com/AMANN-N/smart-practice/internal/session"
	"github.com/AMANN-N/smart-practice/internal/ui/layout"
)

// Options configures a PracticeScreen.
type Options struct {
	UserID        string
	Timeout       time.Duration
	PulseInterval time.Duration
	Layouter      graphview.Layouter
	Logger        *zap.Logger
}

// PracticeScreen pairs the session controller's question panel with the
// knowledge graph of the active topic.
type PracticeScreen struct {
	ctrl  *session.Controller
	graph *graphview.View
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.StatusProvider = (*PracticeScreen)(nil)

// New wires a controller and graph view to svc.
func New(svc client.Service, opts Options) *PracticeScreen {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	graph := graphview.New(svc, graphview.Options{
		Layouter:      opts.Layouter,
		Logger:        opts.Logger.Named("graph"),
		Timeout:       opts.Timeout,
		PulseInterval: opts.PulseInterval,
	})
	ctrl := session.New(svc, graph, session.Options{
		UserID:  opts.UserID,
		Timeout: opts.Timeout,
		Logger:  opts.Logger.Named("session"),
	})
	return &PracticeScreen{ctrl: ctrl, graph: graph}
}

// Controller exposes the session controller.
func (s *PracticeScreen) Controller() *session.Controller { return s.ctrl }

// Graph exposes the graph view.
func (s *PracticeScreen) Graph() *graphview.View { return s.graph }

func (s *PracticeScreen) Init() tea.Cmd {
	s.graph.Init()
	return s.ctrl.Init()
}

func (s *PracticeScreen) Title() string {
	if topic := s.ctrl.State().TopicName; topic != "" {
		return topic
	}
	return "Practice"
}

func (s *PracticeScreen) HeaderStatus() string {
	if !s.ctrl.Phase().InSession() {
		return ""
	}
	p := s.ctrl.Panel()
	if p.TargetStreak > 0 {
		return fmt.Sprintf("streak %d/%d", p.Streak, p.TargetStreak)
	}
	return fmt.Sprintf("streak %d", p.Streak)
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	graphHints := []layout.KeyHint{
		{Key: "Tab", Description: "Next node"},
		{Key: "F", Description: "Fit graph"},
		{Key: "X", Description: "Change topic"},
	}
	switch s.ctrl.Phase() {
	case session.PhaseIdle:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Start"},
			{Key: "I", Description: "Ingest"},
			{Key: "R", Description: "Reload"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	case session.PhaseStarting:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case session.PhaseTopicSelected:
		return append([]layout.KeyHint{{Key: "R", Description: "Retry"}}, graphHints...)
	case session.PhaseQuestionDisplayed:
		return append([]layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Submit"},
		}, graphHints...)
	case session.PhaseFeedbackDisplayed:
		return append([]layout.KeyHint{{Key: "Space", Description: "Continue"}}, graphHints...)
	case session.PhaseDone:
		return append([]layout.KeyHint{{Key: "R", Description: "Restart"}}, graphHints...)
	}
	return graphHints
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ingest.RequestedMsg:
		return s, s.ctrl.Ingest(msg.Topic)
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, tea.Batch(s.ctrl.Update(msg), s.graph.Update(msg))
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	phase := s.ctrl.Phase()
	switch msg.String() {
	case "i":
		if phase == session.PhaseIdle {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: ingest.New()}
			}
		}
	case "tab":
		if phase.InSession() {
			s.graph.HighlightNext()
			return nil
		}
	case "f":
		if phase.InSession() {
			s.graph.Fit()
			return nil
		}
	}
	return s.ctrl.HandleKey(msg)
}
