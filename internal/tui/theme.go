package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// ColorblindFriendlyTheme defines a colorblind-friendly color scheme
// Using a palette that works well for all forms of color blindness
type ColorblindFriendlyTheme struct {
	Blue      lipgloss.Color
	DarkBlue  lipgloss.Color
	LightBlue lipgloss.Color
	White     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Default lipgloss.Color

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Bold     lipgloss.Style
	Faint    lipgloss.Style
	Due      lipgloss.Style
	Skipped  lipgloss.Style

	BorderColor lipgloss.Color
}

// NewTheme creates a new colorblind-friendly theme
func NewTheme() *ColorblindFriendlyTheme {
	t := &ColorblindFriendlyTheme{
		Blue:      "#0072B2", // Dark blue - distinctive in all color vision deficiencies
		DarkBlue:  "#004C99",
		LightBlue: "#56B4E9",
		White:     "#FFFFFF",

		Success: "#009E73", // Bluish green instead of pure green
		Warning: "#E69F00",
		Default: "#999999",

		BorderColor: "#56B4E9",
	}

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Blue).
		MarginBottom(1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(t.DarkBlue)

	t.Bold = lipgloss.NewStyle().Bold(true)

	t.Faint = lipgloss.NewStyle().
		Faint(true).
		Foreground(t.Default)

	t.Due = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Success)

	t.Skipped = lipgloss.NewStyle().
		Foreground(t.Warning)

	return t
}

// TableStyles returns bubbles table styles matching the theme.
func (t *ColorblindFriendlyTheme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.BorderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(t.White).
		Background(t.LightBlue).
		Bold(true)
	return s
}
