package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the lipgloss styles shared by the menu screens.
type Theme struct {
	// Level picker styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
	MenuStars       lipgloss.Style
	MenuLocked      lipgloss.Style

	// Results board styles
	BoardTitle  lipgloss.Style
	BoardBorder lipgloss.Style
	BoardEmpty  lipgloss.Style
	BoardStats  lipgloss.Style
	TabNormal   lipgloss.Style
	TabActive   lipgloss.Style

	// Footer
	Controls lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		MenuStars:       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		MenuLocked:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		BoardTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1),
		BoardBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		BoardEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4),
		BoardStats:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		TabNormal:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1),

		Controls: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without color.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	theme.MenuTitle = lipgloss.NewStyle().Bold(true)
	theme.MenuItemActive = lipgloss.NewStyle().Bold(true).Underline(true)
	theme.MenuStars = lipgloss.NewStyle()
	theme.TabActive = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	return theme
}

// Global theme variable (can be changed at runtime)
var theme = DefaultTheme()

// SetTheme sets the global theme.
func SetTheme(t Theme) {
	theme = t
}

// GetTheme returns the current global theme.
func GetTheme() Theme {
	return theme
}
