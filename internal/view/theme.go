// Package view renders catalog load states as terminal cards.
package view

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the page color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Toggle returns the other theme. Anything that is not dark toggles to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ToggleLabel names the action that switches to the other theme.
func (t Theme) ToggleLabel() string {
	if t == ThemeDark {
		return "Switch to Light Theme"
	}
	return "Switch to Dark Theme"
}

// Palette colors per theme.
var (
	lightText   = lipgloss.Color("#1e1e2e")
	lightSubtle = lipgloss.Color("#6c7086")
	lightAccent = lipgloss.Color("#d20f39")
	lightBorder = lipgloss.Color("#9ca0b0")

	darkText   = lipgloss.Color("#cdd6f4")
	darkSubtle = lipgloss.Color("#a6adc8")
	darkAccent = lipgloss.Color("#f9e2af")
	darkBorder = lipgloss.Color("#585b70")

	errorColor = lipgloss.Color("#f38ba8")
)

// Styles holds the Lip Gloss styles of one theme.
type Styles struct {
	Title   lipgloss.Style
	Toggle  lipgloss.Style
	Heading lipgloss.Style
	Spinner lipgloss.Style
	Error   lipgloss.Style
	Summary lipgloss.Style

	Card      lipgloss.Style
	CardName  lipgloss.Style
	CardLabel lipgloss.Style
	CardImage lipgloss.Style
}

// StylesFor returns the styles of t.
func StylesFor(t Theme) Styles {
	text, subtle, accent, border := lightText, lightSubtle, lightAccent, lightBorder
	if t == ThemeDark {
		text, subtle, accent, border = darkText, darkSubtle, darkAccent, darkBorder
	}

	s := Styles{}
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(accent)
	s.Toggle = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1).
		Border(lipgloss.NormalBorder()).BorderForeground(border)
	s.Heading = lipgloss.NewStyle().Bold(true).Foreground(text).MarginTop(1)
	s.Spinner = lipgloss.NewStyle().Foreground(accent)
	s.Error = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	s.Summary = lipgloss.NewStyle().Foreground(subtle).Italic(true)

	s.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	s.CardName = lipgloss.NewStyle().Bold(true).Foreground(text)
	s.CardLabel = lipgloss.NewStyle().Foreground(subtle)
	s.CardImage = lipgloss.NewStyle().Foreground(subtle).Faint(true)
	return s
}
