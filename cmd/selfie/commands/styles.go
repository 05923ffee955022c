package commands

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22A06B"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D93025"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#667085"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

const (
	iconCheck   = "✓"
	iconCross   = "✗"
	iconWarning = "!"
	iconSkip    = "○"
)
