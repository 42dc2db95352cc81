package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Macchiato, limited to the shades the board draws with
var (
	Base     = lipgloss.Color("#24273a")
	Surface0 = lipgloss.Color("#363a4f")
	Surface1 = lipgloss.Color("#494d64")
	Surface2 = lipgloss.Color("#5b6078")
	Overlay0 = lipgloss.Color("#6e738d")
	Overlay1 = lipgloss.Color("#8087a2")
	Overlay2 = lipgloss.Color("#939ab7")
	Subtext0 = lipgloss.Color("#a5adcb")
	Subtext1 = lipgloss.Color("#b8c0e0")
	Text     = lipgloss.Color("#cad3f5")

	Red      = lipgloss.Color("#ed8796")
	Maroon   = lipgloss.Color("#ee99a0")
	Yellow   = lipgloss.Color("#eed49f")
	Green    = lipgloss.Color("#a6da95")
	Teal     = lipgloss.Color("#8bd5ca")
	Blue     = lipgloss.Color("#8aadf4")
	Lavender = lipgloss.Color("#b7bdf8")
)

// StatusColor is the accent for an epic status. Unknown statuses are dimmed.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "planning":
		return Overlay2
	case "active", "in_progress":
		return Yellow
	case "completed":
		return Green
	}
	return Overlay0
}

// PhaseColor is the header accent for a phase status
func PhaseColor(status string) lipgloss.Color {
	switch status {
	case "ready":
		return Blue
	case "in_progress":
		return Yellow
	case "blocked":
		return Red
	case "completed":
		return Green
	}
	return Subtext0
}
