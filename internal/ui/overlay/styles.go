package overlay

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// Styles is the palette shared by the modal overlays. The frame and title
// are drawn by the app, so overlays only style their content.
type Styles struct {
	Item     lipgloss.Style // plain option or line
	Selected lipgloss.Style // option under the cursor
	Muted    lipgloss.Style // missing dependencies, empty lists
	Key      lipgloss.Style // key hint such as "p" in "[p=Planning]"
	Heading  lipgloss.Style
	Rule     lipgloss.Style
	Hint     lipgloss.Style // footer help line
	Phase    lipgloss.Style // phase previews: "→ would be in phase 3"
}

func newStyles() *Styles {
	return &Styles{
		Item:     lipgloss.NewStyle().Foreground(styles.Text),
		Selected: lipgloss.NewStyle().Foreground(styles.Blue).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(styles.Overlay0),
		Key:      lipgloss.NewStyle().Foreground(styles.Yellow).Bold(true),
		Heading:  lipgloss.NewStyle().Foreground(styles.Subtext1).Bold(true),
		Rule:     lipgloss.NewStyle().Foreground(styles.Surface1),
		Hint:     lipgloss.NewStyle().Foreground(styles.Subtext0).MarginTop(1),
		Phase:    lipgloss.NewStyle().Foreground(styles.Green),
	}
}
