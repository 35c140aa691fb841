package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, dark with an indigo accent
var (
	Primary   = lipgloss.Color("#646CFF") // Indigo
	Secondary = lipgloss.Color("#00B894") // Mint
	Accent    = lipgloss.Color("#FDCB6E") // Amber
	Success   = lipgloss.Color("#00FA9A") // Spring Green
	Error     = lipgloss.Color("#FF7675") // Coral
	Text      = lipgloss.Color("#DFE6E9") // Cloud
	TextDim   = lipgloss.Color("#636E72") // Slate
	BgDark    = lipgloss.Color("#12121C") // Night
	BgCard    = lipgloss.Color("#1E1E2E") // Card
	Border    = lipgloss.Color("#636E72") // Slate
)

// Knowledge graph node colors by mastery status.
var (
	NodePending      = lipgloss.Color("#1E1E2E")
	NodeActive       = lipgloss.Color("#646CFF")
	NodeActiveBorder = lipgloss.Color("#AEB4FF")
	NodeMastered     = lipgloss.Color("#00FA9A")
	NodeMasteredText = lipgloss.Color("#000000")
	EdgeColor        = lipgloss.Color("#636E72")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Badge = lipgloss.NewStyle().
		Foreground(BgDark).
		Background(Accent).
		Padding(0, 1)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Disabled = lipgloss.NewStyle().
			Foreground(TextDim)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Alert = lipgloss.NewStyle().
		Foreground(Error).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Error).
		PaddingLeft(1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(BgCard)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
