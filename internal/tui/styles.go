package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Color palette shared by all views.
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorAccent  = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF5F87")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#444444")
)

var (
	AppStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	PositiveStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// FormatCurrency renders an amount with apostrophe grouping, the Swiss
// convention.
func FormatCurrency(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "'" + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return "CHF " + s
}
