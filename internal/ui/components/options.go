package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

// OptionButton is one selectable answer. The answer value is fixed when
// the button is built; OnPress is expected to have captured it.
type OptionButton struct {
	Index    int
	Value    string
	Disabled bool
	OnPress  func() tea.Cmd
}

// Press invokes the button's handler unless it is disabled.
func (o OptionButton) Press() tea.Cmd {
	if o.Disabled || o.OnPress == nil {
		return nil
	}
	return o.OnPress()
}

// OptionList is a vertical list of answer buttons with a cursor.
type OptionList struct {
	Options  []OptionButton
	Selected int
}

// NewOptionList creates a list with the cursor on the first option.
func NewOptionList(options []OptionButton) OptionList {
	return OptionList{Options: options}
}

// Len returns the number of options.
func (l OptionList) Len() int {
	return len(l.Options)
}

// SetDisabled enables or disables every option at once.
func (l *OptionList) SetDisabled(disabled bool) {
	for i := range l.Options {
		l.Options[i].Disabled = disabled
	}
}

// Disabled reports whether every option is disabled. An empty list
// counts as disabled.
func (l OptionList) Disabled() bool {
	for _, o := range l.Options {
		if !o.Disabled {
			return false
		}
	}
	return true
}

// Update handles cursor movement, enter, and the 1-9 shortcuts.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.Options) == 0 {
		return l, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if l.Selected > 0 {
			l.Selected--
		}
	case "down", "j":
		if l.Selected < len(l.Options)-1 {
			l.Selected++
		}
	case "enter":
		return l, l.Options[l.Selected].Press()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(l.Options) {
				l.Selected = i
				return l, l.Options[i].Press()
			}
		}
	}
	return l, nil
}

// View renders the options, one per line, wrapped to width.
func (l OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Selected && !opt.Disabled {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.Value)

		style := theme.Unselected
		switch {
		case opt.Disabled:
			style = theme.Disabled
		case i == l.Selected:
			style = theme.Selected
		}
		if width > 0 {
			style = style.Width(width)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// OptionsWidth bounds the rendered option width to keep long answers
// readable in wide terminals.
func OptionsWidth(frameWidth int) int {
	return max(20, min(frameWidth-4, 72))
}
