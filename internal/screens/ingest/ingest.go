package ingest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/AMANN-N/smart-practice/internal/router"
	"github.com/AMANN-N/smart-practice/internal/screen"
	"github.com/AMANN-N/smart-practice/internal/ui/components"
	"github.com/AMANN-N/smart-practice/internal/ui/layout"
	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

// maxTopicLen bounds the topic name a user may type.
const maxTopicLen = 80

// RequestedMsg is delivered to the screen below when the user confirms a
// topic to ingest.
type RequestedMsg struct {
	Topic string
}

// IngestScreen asks for the name of a new topic to build a knowledge base
// for.
type IngestScreen struct {
	input components.TextInput
}

var _ screen.Screen = (*IngestScreen)(nil)
var _ screen.KeyHintProvider = (*IngestScreen)(nil)

// New creates an IngestScreen with an empty, focused input.
func New() *IngestScreen {
	return &IngestScreen{
		input: components.NewTextInput("e.g. python_basics", maxTopicLen),
	}
}

func (s *IngestScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *IngestScreen) Title() string {
	return "Ingest Topic"
}

func (s *IngestScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Ingest"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *IngestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		topic := s.input.Value()
		if topic == "" {
			s.input.Invalid = "Enter a topic name"
			return s, nil
		}
		return s, func() tea.Msg {
			return router.PopScreenMsg{Result: RequestedMsg{Topic: topic}}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// Value returns the trimmed topic typed so far.
func (s *IngestScreen) Value() string {
	return s.input.Value()
}

func (s *IngestScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("New topic"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("The server builds a knowledge graph for the topic,"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render("then a practice session starts on it."))
	b.WriteString("\n\n")
	b.WriteString(s.input.View())

	card := theme.Card.Width(min(width-4, 64)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
