package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/client"
	"github.com/AMANN-N/smart-practice/internal/ui/components"
)

// DefaultTimeout bounds each service call when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// completionText is shown once every concept in the topic is mastered.
const completionText = "Topic Mastered!\n\nYou have conquered this knowledge graph."

// GraphRefresher is the part of the graph view the controller drives.
// Calls are fire-and-forget: the returned command is batched alongside the
// controller's own and never gates question rendering.
type GraphRefresher interface {
	LoadData() tea.Cmd
	Reset()
}

// Options configures a Controller.
type Options struct {
	UserID  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Controller sequences a practice session against the question service:
// start, next, submit, next, until the service reports DONE.
//
// All methods must be called from the Bubble Tea update loop. Network calls
// run inside the returned commands and re-enter through Update.
type Controller struct {
	svc     client.QuestionService
	graph   GraphRefresher
	log     *zap.Logger
	userID  string
	timeout time.Duration

	phase Phase
	state State
	panel Panel

	pendingTopic string

	// epoch changes whenever a session is started or discarded.
	epoch      int
	advanceSeq int
	submitSeq  int
}

// New creates a Controller in the Idle phase with the topic picker shown.
func New(svc client.QuestionService, graph GraphRefresher, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	c := &Controller{
		svc:     svc,
		graph:   graph,
		log:     opts.Logger,
		userID:  opts.UserID,
		timeout: opts.Timeout,
	}
	c.panel = c.idlePanel()
	return c
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// State returns a copy of the session state.
func (c *Controller) State() State { return c.state }

// Panel returns a copy of the renderable view.
func (c *Controller) Panel() Panel { return c.panel }

// Init loads the topic list.
func (c *Controller) Init() tea.Cmd {
	return c.LoadTopics()
}

// LoadTopics fetches the topic list for the picker. Valid in any phase;
// the result only touches the picker.
func (c *Controller) LoadTopics() tea.Cmd {
	c.panel.TopicsLoading = true
	c.panel.TopicsErr = ""
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		topics, err := c.svc.ListTopics(ctx)
		return topicsLoadedMsg{Topics: topics, Err: err}
	}
}

// Ingest asks the service to build a knowledge base for name and, once it
// succeeds, selects it. Valid only from Idle.
func (c *Controller) Ingest(name string) tea.Cmd {
	name = strings.TrimSpace(name)
	if c.phase != PhaseIdle || name == "" {
		return nil
	}

	c.epoch++
	c.phase = PhaseStarting
	c.panel.Alert = ""
	c.panel.Busy = fmt.Sprintf("Ingesting %s…", name)

	epoch := c.epoch
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		return ingestDoneMsg{epoch: epoch, Topic: name, Err: c.svc.Ingest(ctx, name)}
	}
}

// SelectTopic starts a session on name. Valid only from Idle. The picker
// stays visible until the start request succeeds.
func (c *Controller) SelectTopic(name string) tea.Cmd {
	name = strings.TrimSpace(name)
	if c.phase != PhaseIdle || name == "" {
		return nil
	}

	c.epoch++
	c.phase = PhaseStarting
	c.pendingTopic = name
	c.panel.Alert = ""
	c.panel.Busy = fmt.Sprintf("Starting %s…", name)

	epoch, userID := c.epoch, c.userID
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		return sessionStartedMsg{epoch: epoch, Topic: name, Err: c.svc.StartSession(ctx, userID, name)}
	}
}

// Advance clears the previous question's feedback and options, shows the
// loading placeholder and requests the next question. Valid from
// TopicSelected, QuestionDisplayed and FeedbackDisplayed.
func (c *Controller) Advance() tea.Cmd {
	switch c.phase {
	case PhaseTopicSelected, PhaseQuestionDisplayed, PhaseFeedbackDisplayed:
	default:
		return nil
	}

	// Clear synchronously so no stale option can be pressed while the
	// fetch is in flight.
	c.panel.Feedback = nil
	c.panel.Continue.Active = false
	c.panel.Retry.Active = false
	c.panel.Options = components.NewOptionList(nil)
	c.panel.Content = "Loading…"
	c.panel.Difficulty = ""
	c.panel.Loading = true
	c.panel.Alert = ""

	c.phase = PhaseAwaitingQuestion
	c.advanceSeq++

	epoch, seq := c.epoch, c.advanceSeq
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		q, err := c.svc.NextQuestion(ctx)
		return questionLoadedMsg{epoch: epoch, seq: seq, Question: q, Err: err}
	}
}

// Submit sends answer for the current question. Valid only from
// QuestionDisplayed with the guard clear; any other call is a no-op.
func (c *Controller) Submit(answer string) tea.Cmd {
	if c.phase != PhaseQuestionDisplayed || c.state.Submitting || c.state.CurrentQuestion == nil {
		return nil
	}

	// Check-then-set happens here, inside the update loop.
	c.state.Submitting = true
	c.phase = PhaseSubmitting
	c.panel.Options.SetDisabled(true)
	c.panel.Alert = ""
	c.submitSeq++

	seq, questionID := c.submitSeq, c.state.CurrentQuestion.ID
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		res, err := c.svc.Submit(ctx, questionID, answer)
		return submitResultMsg{seq: seq, QuestionID: questionID, Result: res, Err: err}
	}
}

// Continue leaves the feedback view. The controller never advances on its
// own after feedback.
func (c *Controller) Continue() tea.Cmd {
	if c.phase != PhaseFeedbackDisplayed {
		return nil
	}
	return c.Advance()
}

// Restart discards the session and returns to the topic picker. Valid from
// any in-session phase.
func (c *Controller) Restart() tea.Cmd {
	if !c.phase.InSession() {
		return nil
	}

	c.epoch++
	c.advanceSeq++
	c.submitSeq++
	c.state = State{}
	c.phase = PhaseIdle
	c.pendingTopic = ""

	topics := c.panel.Topics
	c.panel = c.idlePanel()
	c.panel.Topics = topics

	c.graph.Reset()
	return c.LoadTopics()
}

// Update applies a result message. Unknown messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		return c.handleTopics(msg)
	case ingestDoneMsg:
		return c.handleIngest(msg)
	case sessionStartedMsg:
		return c.handleStarted(msg)
	case questionLoadedMsg:
		return c.handleQuestion(msg)
	case statusLoadedMsg:
		return c.handleStatus(msg)
	case submitResultMsg:
		return c.handleSubmitResult(msg)
	}
	return nil
}

// HandleKey routes a key press to the affordance of the current phase.
func (c *Controller) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "x" && c.phase.InSession() {
		return c.Restart()
	}

	// Press handlers mutate the panel themselves, so only the cursor is
	// copied back from the widget.
	var cmd tea.Cmd
	switch c.phase {
	case PhaseIdle:
		if msg.String() == "r" {
			return c.LoadTopics()
		}
		var menu components.Menu
		menu, cmd = c.panel.Topics.Update(msg)
		c.panel.Topics.Selected = menu.Selected
	case PhaseTopicSelected:
		_, cmd = c.panel.Retry.Update(msg)
	case PhaseQuestionDisplayed:
		var list components.OptionList
		list, cmd = c.panel.Options.Update(msg)
		c.panel.Options.Selected = list.Selected
	case PhaseFeedbackDisplayed:
		_, cmd = c.panel.Continue.Update(msg)
	case PhaseDone:
		_, cmd = c.panel.Restart.Update(msg)
	}
	return cmd
}

func (c *Controller) handleTopics(msg topicsLoadedMsg) tea.Cmd {
	c.panel.TopicsLoading = false
	if msg.Err != nil {
		c.log.Warn("load topics failed", zap.Error(msg.Err))
		c.panel.TopicsErr = "Could not load topics: " + describe(msg.Err)
		return nil
	}

	items := make([]components.MenuItem, len(msg.Topics))
	for i, t := range msg.Topics {
		items[i] = components.MenuItem{Label: t, Action: bindTopic(c.SelectTopic, t)}
	}
	c.panel.Topics.SetItems(items)
	return nil
}

func (c *Controller) handleIngest(msg ingestDoneMsg) tea.Cmd {
	if msg.epoch != c.epoch || c.phase != PhaseStarting {
		return nil
	}

	c.phase = PhaseIdle
	c.panel.Busy = ""
	if msg.Err != nil {
		c.log.Warn("ingest failed", zap.String("topic", msg.Topic), zap.Error(msg.Err))
		c.panel.Alert = "Ingestion failed: " + describe(msg.Err)
		return nil
	}
	c.log.Info("topic ingested", zap.String("topic", msg.Topic))
	return tea.Batch(c.LoadTopics(), c.SelectTopic(msg.Topic))
}

func (c *Controller) handleStarted(msg sessionStartedMsg) tea.Cmd {
	if msg.epoch != c.epoch || c.phase != PhaseStarting || msg.Topic != c.pendingTopic {
		return nil
	}

	c.pendingTopic = ""
	c.panel.Busy = ""
	if msg.Err != nil {
		c.log.Warn("start session failed", zap.String("topic", msg.Topic), zap.Error(msg.Err))
		c.phase = PhaseIdle
		c.panel.Alert = "Could not start session: " + describe(msg.Err)
		return nil
	}

	c.log.Info("session started", zap.String("topic", msg.Topic), zap.String("user", c.userID))
	c.state = State{TopicName: msg.Topic}
	c.phase = PhaseTopicSelected
	c.panel.PickerVisible = false
	c.panel.QuestionVisible = true
	c.panel.Retry = components.Button{Label: "Retry", Key: "r", OnPress: c.Advance}

	return tea.Batch(c.graph.LoadData(), c.Advance())
}

func (c *Controller) handleQuestion(msg questionLoadedMsg) tea.Cmd {
	if msg.epoch != c.epoch || msg.seq != c.advanceSeq || c.phase != PhaseAwaitingQuestion {
		return nil
	}

	c.panel.Loading = false
	err := msg.Err
	switch {
	case err != nil:
	case msg.Question == nil:
		err = &client.InvalidResponseError{Op: client.OpNext, Err: errors.New("empty question")}
	case !msg.Question.Done() && len(msg.Question.Options) == 0:
		err = &client.InvalidResponseError{Op: client.OpNext, Err: errors.New("question has no options")}
	}
	if err != nil {
		c.log.Warn("next question failed", zap.String("topic", c.state.TopicName), zap.Error(err))
		c.phase = PhaseTopicSelected
		c.panel.Content = ""
		c.panel.Alert = "Could not load the next question: " + describe(err)
		c.panel.Retry.Active = true
		return nil
	}

	q := msg.Question
	c.state.CurrentQuestion = q

	if q.Done() {
		c.phase = PhaseDone
		c.panel.Completed = true
		c.panel.Content = completionText
		c.panel.Difficulty = ""
		c.panel.Options = components.NewOptionList(nil)
		c.panel.Restart = components.NewButton("Restart", "r", c.Restart)
		c.log.Info("topic mastered", zap.String("topic", c.state.TopicName))
		return nil
	}

	c.phase = PhaseQuestionDisplayed
	c.panel.Content = q.Content
	c.panel.Difficulty = q.Difficulty
	c.panel.Options = components.NewOptionList(c.buildOptions(q.Options))
	return c.pollStatus()
}

// buildOptions creates one button per option, each with its own answer
// captured at construction.
func (c *Controller) buildOptions(values []string) []components.OptionButton {
	opts := make([]components.OptionButton, len(values))
	for i, v := range values {
		opts[i] = components.OptionButton{
			Index:   i,
			Value:   v,
			OnPress: bindAnswer(c.Submit, v),
		}
	}
	return opts
}

// bindAnswer returns a press handler that submits exactly answer.
func bindAnswer(submit func(string) tea.Cmd, answer string) func() tea.Cmd {
	return func() tea.Cmd { return submit(answer) }
}

// bindTopic returns a menu action that selects exactly topic.
func bindTopic(selectTopic func(string) tea.Cmd, topic string) func() tea.Cmd {
	return func() tea.Cmd { return selectTopic(topic) }
}

// pollStatus fetches breadcrumb and streak. Its failure never affects the
// question on screen.
func (c *Controller) pollStatus() tea.Cmd {
	epoch, seq := c.epoch, c.advanceSeq
	return func() tea.Msg {
		ctx, cancel := c.requestContext()
		defer cancel()
		st, err := c.svc.Status(ctx)
		return statusLoadedMsg{epoch: epoch, seq: seq, Status: st, Err: err}
	}
}

func (c *Controller) handleStatus(msg statusLoadedMsg) tea.Cmd {
	if msg.epoch != c.epoch || msg.seq != c.advanceSeq {
		return nil
	}
	if msg.Err != nil {
		c.log.Debug("status poll failed", zap.Error(msg.Err))
		return nil
	}
	if msg.Status == nil {
		return nil
	}
	if msg.Status.Breadcrumb != "" {
		c.panel.Breadcrumb = msg.Status.Breadcrumb
	}
	c.panel.Streak = msg.Status.Streak
	c.panel.TargetStreak = msg.Status.TargetStreak
	return nil
}

func (c *Controller) handleSubmitResult(msg submitResultMsg) tea.Cmd {
	if msg.seq != c.submitSeq {
		// Superseded by a restart, which already released the guard.
		return nil
	}
	defer func() { c.state.Submitting = false }()

	if c.phase != PhaseSubmitting || c.state.CurrentQuestion == nil || c.state.CurrentQuestion.ID != msg.QuestionID {
		return nil
	}

	err := msg.Err
	if err == nil && msg.Result == nil {
		err = &client.InvalidResponseError{Op: client.OpSubmit, Err: errors.New("empty result")}
	}
	if err != nil {
		c.log.Warn("submit failed", zap.String("question_id", msg.QuestionID), zap.Error(err))
		c.phase = PhaseQuestionDisplayed
		c.panel.Options.SetDisabled(false)
		c.panel.Alert = "Submission failed: " + describe(err)
		return nil
	}

	res := msg.Result
	c.phase = PhaseFeedbackDisplayed
	c.panel.Feedback = &Feedback{
		Correct:       res.IsCorrect,
		Text:          res.Feedback,
		CorrectAnswer: res.CorrectAnswer,
	}
	c.panel.Continue = components.NewButton("Continue", "space", c.Continue)

	if res.IsCorrect {
		return c.graph.LoadData()
	}
	return nil
}

func (c *Controller) idlePanel() Panel {
	topics := components.NewMenu(nil)
	topics.Empty = "No topics yet. Press i to ingest one."
	return Panel{
		PickerVisible: true,
		Topics:        topics,
		Options:       components.NewOptionList(nil),
	}
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// describe turns a service error into a short user-facing reason.
func describe(err error) string {
	var (
		svcErr  *client.ServiceError
		netErr  *client.NetworkError
		respErr *client.InvalidResponseError
	)
	switch {
	case errors.As(err, &svcErr):
		if svcErr.Detail != "" {
			return svcErr.Detail
		}
		return fmt.Sprintf("server returned %d", svcErr.StatusCode)
	case errors.As(err, &netErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return "the server took too long to respond"
		}
		return "could not reach the server"
	case errors.As(err, &respErr):
		return "the server sent an unexpected response"
	}
	return err.Error()
}
