package compact

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// Styles for the list view's table
type Styles struct {
	HeaderCell lipgloss.Style
	Separator  lipgloss.Style
	Row        lipgloss.Style
	RowActive  lipgloss.Style
	ColID      lipgloss.Style
	ColPhase   lipgloss.Style
	ColWaiting lipgloss.Style
	Cursor     lipgloss.Style
	Cycle      lipgloss.Style
}

func NewStyles() *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		HeaderCell: fg(styles.Text).Bold(true),
		Separator:  fg(styles.Surface1),
		Row:        fg(styles.Text),
		RowActive:  fg(styles.Text).Background(styles.Surface0),
		ColID:      fg(styles.Overlay1).Bold(true),
		ColPhase:   fg(styles.Lavender).Align(lipgloss.Center),
		ColWaiting: fg(styles.Overlay1).Italic(true),
		Cursor:     fg(styles.Blue).Bold(true),
		Cycle:      fg(styles.Red).Bold(true),
	}
}

// Status colors the status cell the same way the board's badges are
func (s *Styles) Status(status domain.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(styles.StatusColor(string(status)))
}
