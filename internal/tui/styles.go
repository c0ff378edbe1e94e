package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for hyprscribe TUI components
var (
	// Header style for titles and section headers
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Label style for form field labels
	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Muted style for secondary text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Subtle style for hints and descriptions
	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	StyleRecording = lipgloss.NewStyle().
			Foreground(ColorRecord).
			Bold(true)

	// Panel style for result sections
	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	// Footer key hints
	StyleKey = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleKeyDisabled = lipgloss.NewStyle().
				Foreground(ColorHighlight)
)

const logoASCII = `
 _                               _ _          
| |__  _   _ _ __  _ __ ___  ___ _ __(_) |__   ___ 
| '_ \| | | | '_ \| '__/ __|/ __| '__| | '_ \ / _ \
| | | | |_| | |_) | |  \__ \ (__| |  | | |_) |  __/
|_| |_|\__, | .__/|_|  |___/\___|_|  |_|_.__/ \___|
       |___/|_|                                    `

// Logo returns the hyprscribe ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}

func LogoLines() []string {
	return strings.Split(strings.Trim(logoASCII, "\n"), "\n")
}
