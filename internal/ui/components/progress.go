package components

import (
	"fmt"
	"strings"

	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

// StreakBar shows progress toward the mastery streak of the current
// concept as a row of cells.
type StreakBar struct {
	Streak int
	Target int
}

// View renders the bar. Without a target it renders the count alone.
func (s StreakBar) View() string {
	if s.Target <= 0 {
		return theme.Body.Render(fmt.Sprintf("🔥 %d streak", s.Streak))
	}

	filled := min(max(s.Streak, 0), s.Target)
	bar := theme.ProgressFilled.Render(strings.Repeat("  ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("  ", s.Target-filled))
	return fmt.Sprintf("%s %s", bar, theme.Hint.Render(fmt.Sprintf("%d/%d streak", s.Streak, s.Target)))
}
