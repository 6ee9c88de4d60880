package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo/Purple
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Pink/Red
	ColorWarning   = lipgloss.Color("#FFAF00") // Gold
	ColorLimited   = lipgloss.Color("#FF8700") // Orange
	ColorSubtle    = lipgloss.Color("#767676") // Gray
	ColorBanner    = lipgloss.Color("#7D56F4")
)

var (
	// Scenario and result headers
	Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	Subtle = lipgloss.NewStyle().Foreground(ColorSubtle)

	// Per-request tags
	Success = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	Limited = lipgloss.NewStyle().Foreground(ColorLimited).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(ColorError)
	Warn    = lipgloss.NewStyle().Foreground(ColorWarning)

	Value = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

	// Countdown box
	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSubtle).
		Padding(0, 1)
)

// ForVerdict picks the style used for a verdict line by its severity.
func ForVerdict(correct, partial bool) lipgloss.Style {
	switch {
	case correct:
		return Success
	case partial:
		return Warn
	default:
		return Error
	}
}
