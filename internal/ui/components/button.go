package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/AMANN-N/smart-practice/internal/ui/theme"
)

// Button is a single labeled action such as Continue or Restart.
type Button struct {
	Label   string
	Key     string // shortcut shown next to the label, e.g. "enter"
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates an active button.
func NewButton(label, key string, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Key:     key,
		Active:  true,
		OnPress: onPress,
	}
}

// Press invokes the handler when the button is active.
func (b Button) Press() tea.Cmd {
	if !b.Active || b.OnPress == nil {
		return nil
	}
	return b.OnPress()
}

// Update presses the button on enter or its shortcut key.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if k := kmsg.String(); k == "enter" || (b.Key != "" && k == b.Key) {
		return b, b.Press()
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	label := "▸ " + b.Label
	if b.Key != "" {
		label += "  [" + b.Key + "]"
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
