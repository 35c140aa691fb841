package practice

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/AMANN-N/smart-practice/internal/session"
	"github.com/AMANN-N/smart-practice/internal/ui/components"
	"github.com/AMANN-N/smart-practice/internal/ui/layout"
	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	left, right := layout.SplitColumns(width)

	if right == 0 {
		// Compact: the graph goes under the panel.
		graphHeight := height / 3
		panel := lipgloss.NewStyle().Width(width).Height(height - graphHeight).
			Render(s.renderPanel(width))
		return panel + "\n" + s.graph.View(width, graphHeight)
	}

	panel := lipgloss.NewStyle().Width(left).Height(height).Render(s.renderPanel(left))
	graph := theme.Panel.Width(right).Height(height).Render(s.graph.View(right-4, height-2))
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, graph)
}

func (s *PracticeScreen) renderPanel(width int) string {
	p := s.ctrl.Panel()

	var b strings.Builder
	if p.Alert != "" {
		b.WriteString(theme.Alert.Width(max(width-4, 10)).Render("⚠ " + p.Alert))
		b.WriteString("\n\n")
	}

	switch {
	case p.PickerVisible:
		b.WriteString(renderPicker(p))
	case p.Completed:
		b.WriteString(renderCompletion(p, width))
	case p.QuestionVisible:
		b.WriteString(s.renderQuestion(p, width))
	}
	return b.String()
}

func renderPicker(p session.Panel) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Choose a topic"))
	b.WriteString("\n\n")

	switch {
	case p.Busy != "":
		b.WriteString(theme.Hint.Render("  " + p.Busy))
		b.WriteString("\n\n")
	case p.TopicsLoading && len(p.Topics.Items) == 0:
		b.WriteString(theme.Hint.Render("  Loading topics…"))
		b.WriteString("\n\n")
	}
	if p.TopicsErr != "" {
		b.WriteString(theme.Incorrect.Render("  " + p.TopicsErr))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  Press r to try again."))
		b.WriteString("\n\n")
	}
	b.WriteString(p.Topics.View())
	return b.String()
}

func (s *PracticeScreen) renderQuestion(p session.Panel, width int) string {
	var b strings.Builder

	if p.Breadcrumb != "" {
		b.WriteString(theme.Subtitle.Render(p.Breadcrumb))
		b.WriteString("\n")
	}
	b.WriteString(components.StreakBar{Streak: p.Streak, Target: p.TargetStreak}.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if p.Loading {
		b.WriteString(theme.Hint.Render("  Loading question…"))
		return b.String()
	}

	if s.ctrl.Phase() == session.PhaseTopicSelected {
		b.WriteString(p.Retry.View())
		return b.String()
	}

	if p.Difficulty != "" {
		b.WriteString(theme.Badge.Render(p.Difficulty))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Body.Width(max(width-4, 10)).Render(p.Content))
	b.WriteString("\n\n")
	b.WriteString(p.Options.View(components.OptionsWidth(width)))

	if p.Feedback != nil {
		b.WriteString("\n")
		b.WriteString(renderFeedback(*p.Feedback, width))
		b.WriteString("\n\n")
		b.WriteString(p.Continue.View())
	}
	return b.String()
}

func renderFeedback(f session.Feedback, width int) string {
	style, verdict := theme.Incorrect, "✗ Incorrect"
	if f.Correct {
		style, verdict = theme.Correct, "✓ Correct"
	}

	var b strings.Builder
	b.WriteString(style.Render(verdict))
	if f.Text != "" {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(max(width-4, 10)).Render(f.Text))
	}
	if !f.Correct && f.CorrectAnswer != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Answer: " + f.CorrectAnswer))
	}
	return b.String()
}

func renderCompletion(p session.Panel, width int) string {
	var b strings.Builder
	b.WriteString(theme.Correct.Width(max(width-4, 10)).Render(p.Content))
	b.WriteString("\n\n")
	b.WriteString(p.Restart.View())
	return b.String()
}
