package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// Styles holds the styles of the board, the status bar, the modal frame and
// the toasts
type Styles struct {
	// Board
	Board              lipgloss.Style
	Column             lipgloss.Style
	ColumnCycle        lipgloss.Style
	ColumnHeader       lipgloss.Style
	ColumnHeaderActive lipgloss.Style

	// Cards
	Card       lipgloss.Style
	CardActive lipgloss.Style
	CardCycle  lipgloss.Style
	EpicID     lipgloss.Style
	Blockers   lipgloss.Style
	PhaseBadge lipgloss.Style
	CycleBadge lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusMode lipgloss.Style
	StatusHint lipgloss.Style
	StatusInfo lipgloss.Style

	// Modal frame; overlays style their own content
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

func rounded(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func badge(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Base).Background(bg).Padding(0, 1).Bold(true)
}

func toast(accent lipgloss.Color) lipgloss.Style {
	return rounded(accent).Foreground(accent)
}

// New builds the Catppuccin Macchiato styles
func New() *Styles {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).MarginBottom(1)

	return &Styles{
		Board:              lipgloss.NewStyle().Background(Base),
		Column:             rounded(Surface1),
		ColumnCycle:        rounded(Red),
		ColumnHeader:       header.Foreground(Subtext0),
		ColumnHeaderActive: header.Foreground(Blue),

		Card:       rounded(Surface1).MarginBottom(1),
		CardActive: rounded(Lavender).MarginBottom(1),
		CardCycle:  rounded(Maroon).MarginBottom(1),
		EpicID:     lipgloss.NewStyle().Foreground(Overlay1).Bold(true),
		Blockers:   lipgloss.NewStyle().Foreground(Overlay1).Italic(true),
		PhaseBadge: badge(Lavender),
		CycleBadge: badge(Red),

		StatusBar:  lipgloss.NewStyle().Background(Surface0).Foreground(Subtext0).Padding(0, 1),
		StatusMode: badge(Blue),
		StatusHint: lipgloss.NewStyle().Foreground(Overlay1),
		StatusInfo: lipgloss.NewStyle().Foreground(Subtext0),

		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Background(Base).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(Text).Bold(true).MarginBottom(1),

		ToastInfo:    toast(Blue),
		ToastSuccess: toast(Green),
		ToastWarning: toast(Yellow),
		ToastError:   toast(Red),
	}
}

// StatusBadge is the card badge for an epic status
func (s *Styles) StatusBadge(status domain.Status) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(StatusColor(string(status))).
		Background(Surface1).
		Padding(0, 1)
}

// PhaseStatus is the column header style for a phase status
func (s *Styles) PhaseStatus(status domain.PhaseStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PhaseColor(string(status))).Bold(true)
}
