package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent     = lipgloss.Color("#FF8C42")
	accentSoft = lipgloss.Color("#FFB84D")
	muted      = lipgloss.Color("#6B7280")
	danger     = lipgloss.Color("#FF4757")
	white      = lipgloss.Color("#FFFFFF")
	rowStripe  = lipgloss.Color("#1F2937")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentSoft)

	PinnedHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accent).
				Underline(true)

	FilterRowStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	CellStyle = lipgloss.NewStyle().
			Foreground(white)

	StripeStyle = lipgloss.NewStyle().
			Foreground(white).
			Background(rowStripe)

	CursorStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Reverse(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(white)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(accentSoft).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)
