package board

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// renderColumn renders a phase column with header and epic cards
func renderColumn(
	col Column,
	cursorRow int,
	isActive bool,
	info func(id string) CardInfo,
	width int,
	height int,
	s *styles.Styles,
) string {
	// Choose header style based on whether this column is active
	headerStyle := s.ColumnHeader
	if isActive {
		headerStyle = s.ColumnHeaderActive
	}

	// Render header with icon and title (e.g., "◐ Phase 2 · in_progress · 1/3 ──")
	icon := col.Status.Icon()
	if col.Cycle {
		icon = "■"
	}
	headerText := ansi.Truncate(icon+" "+col.Title()+" ", width-2, "…")
	if remaining := width - ansi.StringWidth(headerText) - 2; remaining > 0 {
		headerText += strings.Repeat("─", remaining)
	}
	if !isActive {
		headerStyle = headerStyle.Foreground(s.PhaseStatus(col.Status).GetForeground())
	}
	header := headerStyle.Render(headerText)

	// Render cards, scrolling so the cursor row stays visible
	cardWidth := width - 4 // Account for column border and padding
	start := 0
	if perPage := cardsPerPage(height); isActive && cursorRow >= perPage {
		start = cursorRow - perPage + 1
	}

	var cardStrings []string
	for i := start; i < len(col.Epics); i++ {
		e := col.Epics[i]
		cardStrings = append(cardStrings, renderCard(e, info(e.ID), isActive && i == cursorRow, cardWidth, s))
	}

	// Handle empty column
	content := ""
	if len(cardStrings) > 0 {
		content = strings.Join(cardStrings, "\n")
	}

	// Apply column style
	columnStyle := s.Column
	if col.Cycle {
		columnStyle = s.ColumnCycle
	}
	columnContent := columnStyle.Width(width).Height(height).MaxHeight(height + 2).Render(content)

	// Join header and column
	return lipgloss.JoinVertical(lipgloss.Left, header, columnContent)
}

// cardsPerPage estimates how many cards fit in a column of the given height.
// A card is at most 5 lines plus a margin line.
func cardsPerPage(height int) int {
	n := height / 6
	if n < 1 {
		return 1
	}
	return n
}
