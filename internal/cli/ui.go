package cli

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the terminal views.
var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorYellow = lipgloss.Color("220") // Amber - active cards
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHelp     = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleActive   = lipgloss.NewStyle().Foreground(colorYellow)
	styleNormal   = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel    = lipgloss.NewStyle().Foreground(colorGray)
)
