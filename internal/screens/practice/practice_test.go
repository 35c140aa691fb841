package practice

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMANN-N/smart-practice/internal/client"
	"github.com/AMANN-N/smart-practice/internal/graphview"
	"github.com/AMANN-N/smart-practice/internal/router"
	"github.com/AMANN-N/smart-practice/internal/screens/ingest"
	"github.com/AMANN-N/smart-practice/internal/session"
)

type gridLayouter struct{}

func (gridLayouter) Layout(nodes []graphview.Node, _ []graphview.Edge) (map[string]graphview.Point, error) {
	return graphview.GridLayout(nodes), nil
}

func newTestScreen(t *testing.T) (*PracticeScreen, *client.MockService) {
	t.Helper()
	svc := client.NewMockService()
	svc.Topics = []string{"python_basics"}
	// No active nodes, so no pulse ticks are scheduled.
	svc.GraphResult = &client.GraphData{Elements: []client.GraphElement{
		{Group: client.GroupNodes, Data: client.ElementData{ID: "vars", Label: "Variables", Status: "mastered"}},
		{Group: client.GroupNodes, Data: client.ElementData{ID: "loops", Label: "Loops", Status: "pending"}},
		{Group: client.GroupEdges, Data: client.ElementData{Source: "vars", Target: "loops"}},
	}}
	s := New(svc, Options{UserID: "user_web", Layouter: gridLayouter{}, PulseInterval: time.Hour})
	run(t, s, s.Init())
	return s, svc
}

// run feeds the results of cmd back into s until nothing is left.
func run(t *testing.T, s *PracticeScreen, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "commands did not settle")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, c := s.Update(msg)
			queue = append(queue, c)
		}
	}
}

func press(t *testing.T, s *PracticeScreen, msg tea.KeyPressMsg) {
	t.Helper()
	_, cmd := s.Update(msg)
	run(t, s, cmd)
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestInitShowsTopicPicker(t *testing.T) {
	s, _ := newTestScreen(t)

	assert.Equal(t, session.PhaseIdle, s.Controller().Phase())
	assert.True(t, s.Graph().Initialized())
	assert.Equal(t, "Practice", s.Title())
	assert.Empty(t, s.HeaderStatus())

	view := s.View(120, 30)
	assert.Contains(t, view, "Choose a topic")
	assert.Contains(t, view, "python_basics")
}

func TestPracticeRound(t *testing.T) {
	s, svc := newTestScreen(t)
	svc.StatusResult = &client.SessionStatus{Active: true, Breadcrumb: "Python > Loops", Streak: 1, TargetStreak: 3}
	svc.QueueQuestion(&client.Question{ID: "q1", Content: "What does range(3) yield?", Options: []string{"0,1,2", "1,2,3"}, Difficulty: "beginner"}, nil)

	press(t, s, tea.KeyPressMsg{Code: tea.KeyEnter})

	require.Equal(t, session.PhaseQuestionDisplayed, s.Controller().Phase())
	assert.Equal(t, "python_basics", s.Title())
	assert.Equal(t, "streak 1/3", s.HeaderStatus())
	assert.Len(t, s.Graph().Nodes(), 2)

	view := s.View(120, 30)
	assert.Contains(t, view, "range(3)")
	assert.Contains(t, view, "Python > Loops")
	assert.Contains(t, view, "Variables")

	svc.QueueResult(&client.SubmissionResult{IsCorrect: true, Feedback: "Nice."}, nil)
	press(t, s, key('1'))

	require.Equal(t, session.PhaseFeedbackDisplayed, s.Controller().Phase())
	call, ok := svc.LastCall(client.OpSubmit)
	require.True(t, ok)
	assert.Equal(t, []string{"q1", "0,1,2"}, call.Args)
	assert.Contains(t, s.View(120, 30), "Correct")
	assert.Equal(t, 2, svc.CallCount(client.OpGraph), "correct answer refreshes the graph")

	svc.QueueQuestion(&client.Question{ID: client.DoneID}, nil)
	press(t, s, tea.KeyPressMsg{Code: tea.KeySpace})
	assert.Equal(t, session.PhaseDone, s.Controller().Phase())
	assert.Contains(t, s.View(120, 30), "Topic Mastered")
}

func TestRestartDropsGraphRefreshInFlight(t *testing.T) {
	s, svc := newTestScreen(t)
	svc.QueueQuestion(&client.Question{ID: "q1", Content: "Pick", Options: []string{"a"}}, nil)
	press(t, s, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, session.PhaseQuestionDisplayed, s.Controller().Phase())

	svc.GraphResult = &client.GraphData{Elements: []client.GraphElement{
		{Group: client.GroupNodes, Data: client.ElementData{ID: "vars", Label: "Variables", Status: "active"}},
		{Group: client.GroupNodes, Data: client.ElementData{ID: "loops", Label: "Loops", Status: "pending"}},
	}}
	inFlight := s.Graph().LoadData()
	press(t, s, key('x'))
	require.Equal(t, session.PhaseIdle, s.Controller().Phase())
	require.Empty(t, s.Graph().Nodes())

	// Deliver the stale load and, if it asks for one, its layout. Pulse
	// ticks are not run.
	_, cmd := s.Update(inFlight())
	if cmd != nil {
		s.Update(cmd())
	}

	assert.Equal(t, session.PhaseIdle, s.Controller().Phase())
	assert.False(t, s.Graph().Pulsing())
	assert.Empty(t, s.Graph().Nodes())
}

func TestIngestKeyPushesIngestScreen(t *testing.T) {
	s, _ := newTestScreen(t)

	_, cmd := s.Update(key('i'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &ingest.IngestScreen{}, push.Screen)
}

func TestIngestResultStartsSession(t *testing.T) {
	s, svc := newTestScreen(t)
	svc.QueueQuestion(&client.Question{ID: "q1", Content: "Pick", Options: []string{"a"}}, nil)

	_, cmd := s.Update(ingest.RequestedMsg{Topic: "graphs"})
	run(t, s, cmd)

	call, ok := svc.LastCall(client.OpIngest)
	require.True(t, ok)
	assert.Equal(t, []string{"graphs"}, call.Args)
	assert.Equal(t, "graphs", s.Controller().State().TopicName)
	assert.Equal(t, session.PhaseQuestionDisplayed, s.Controller().Phase())
}

func TestGraphKeysOnlyInSession(t *testing.T) {
	s, svc := newTestScreen(t)

	press(t, s, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Empty(t, s.Graph().Focus())

	svc.QueueQuestion(&client.Question{ID: "q1", Content: "Pick", Options: []string{"a"}}, nil)
	press(t, s, tea.KeyPressMsg{Code: tea.KeyEnter})

	press(t, s, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, "vars", s.Graph().Focus())
	press(t, s, key('f'))
	assert.Empty(t, s.Graph().Focus())
}

func TestKeyHintsFollowPhase(t *testing.T) {
	s, svc := newTestScreen(t)
	assert.Equal(t, "Navigate", s.KeyHints()[0].Description)

	svc.QueueQuestion(&client.Question{ID: "q1", Content: "Pick", Options: []string{"a"}}, nil)
	press(t, s, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "Answer", s.KeyHints()[0].Description)
}

func TestCompactViewStacksGraph(t *testing.T) {
	s, _ := newTestScreen(t)
	assert.NotEmpty(t, s.View(80, 24))
}
