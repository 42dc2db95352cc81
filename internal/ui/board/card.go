package board

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// CardInfo is the computed placement shown on a card
type CardInfo struct {
	Phase   int  // 0 when the epic could not be placed
	InCycle bool // the epic lies on a cycle itself
	// Waiting lists titles of dependencies that are not completed
	Waiting []string
}

// renderCard renders an epic card
func renderCard(e domain.Epic, info CardInfo, isCursor bool, width int, s *styles.Styles) string {
	// Choose card style based on state
	cardStyle := s.Card
	if isCursor {
		cardStyle = s.CardActive
	} else if info.InCycle {
		cardStyle = s.CardCycle
	}

	// Apply width
	cardStyle = cardStyle.Width(width)

	// Account for padding (2) and border (2)
	inner := width - 4
	if inner < 4 {
		inner = 4
	}

	// Cursor indicator (▶ symbol when cursor is on this card)
	cursor := ""
	if isCursor {
		cursor = "▶"
	}
	titleLine := ansi.Truncate(cursor+e.DisplayTitle(), inner, "…")

	var phaseBadge string
	switch {
	case info.InCycle:
		phaseBadge = s.CycleBadge.Render("⟳")
	case info.Phase > 0:
		phaseBadge = s.PhaseBadge.Render("P" + strconv.Itoa(info.Phase))
	default:
		phaseBadge = s.CycleBadge.Render("?")
	}
	statusBadge := s.StatusBadge(e.Status).Render(e.Status.Short())
	idText := s.EpicID.Render(e.ID)
	badgeLine := ansi.Truncate(lipgloss.JoinHorizontal(lipgloss.Left, phaseBadge, " ", statusBadge, " ", idText), inner, "…")

	lines := []string{titleLine, badgeLine}
	if len(info.Waiting) > 0 {
		waiting := ansi.Truncate("after "+strings.Join(info.Waiting, ", "), inner, "…")
		lines = append(lines, s.Blockers.Render(waiting))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderCard is the exported version for testing
func RenderCard(e domain.Epic, info CardInfo, isCursor bool, width int, s *styles.Styles) string {
	return renderCard(e, info, isCursor, width, s)
}
