package tui

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	colorIris  = lipgloss.Color("#8B5CF6")
	colorSlate = lipgloss.Color("#667085")
	colorGreen = lipgloss.Color("#22A06B")
	colorRed   = lipgloss.Color("#D93025")
)

// Icons.
const (
	iconCheck = "✓"
	iconCross = "✗"
	iconDot   = "•"
)
