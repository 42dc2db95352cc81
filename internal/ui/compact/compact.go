// Package compact renders epics as a table in phase order. It is the list
// alternative to the phase board and shares its cursor.
package compact

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/board"
)

// Row is one epic with its placement on the board
type Row struct {
	Epic domain.Epic
	Info board.CardInfo
}

// RowsFromColumns flattens board columns in reading order
func RowsFromColumns(columns []board.Column, info func(id string) board.CardInfo) []Row {
	var rows []Row
	for _, col := range columns {
		for _, e := range col.Epics {
			rows = append(rows, Row{Epic: e, Info: info(e.ID)})
		}
	}
	return rows
}

// CompactView is a scrolling table of epics
type CompactView struct {
	rows   []Row
	cursor int
	styles *Styles
	width  int
	height int

	// Scrolling state
	scrollOffset int
}

// NewCompactView creates a new CompactView with the given dimensions
func NewCompactView(width, height int) *CompactView {
	return &CompactView{
		styles: NewStyles(),
		width:  width,
		height: height,
	}
}

// SetRows updates the rows
func (cv *CompactView) SetRows(rows []Row) {
	cv.rows = rows
	// Clamp cursor to valid range
	if cv.cursor >= len(cv.rows) {
		cv.cursor = max(0, len(cv.rows)-1)
	}
	cv.ensureCursorVisible()
}

// SetCursor sets the cursor position
func (cv *CompactView) SetCursor(index int) {
	cv.cursor = max(0, min(index, len(cv.rows)-1))
	cv.ensureCursorVisible()
}

// SetCursorID moves the cursor to the row holding id. Unknown ids leave the
// cursor where it is.
func (cv *CompactView) SetCursorID(id string) {
	for i, r := range cv.rows {
		if r.Epic.ID == id {
			cv.SetCursor(i)
			return
		}
	}
}

// GetCursor returns the current cursor position
func (cv *CompactView) GetCursor() int {
	return cv.cursor
}

// SetDimensions updates the view dimensions
func (cv *CompactView) SetDimensions(width, height int) {
	cv.width = width
	cv.height = height
	cv.ensureCursorVisible()
}

// Render renders the table
func (cv *CompactView) Render() string {
	if len(cv.rows) == 0 {
		return cv.renderEmptyState()
	}

	var b strings.Builder
	widths := cv.calculateColumnWidths()

	b.WriteString(cv.renderHeader(widths))
	b.WriteString("\n")
	b.WriteString(cv.styles.Separator.Render(strings.Repeat("─", cv.width)))
	b.WriteString("\n")

	visibleRows := cv.calculateVisibleRows()
	startIdx := cv.scrollOffset
	endIdx := min(startIdx+visibleRows, len(cv.rows))

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(cv.renderRow(i, cv.rows[i], widths))
		if i < endIdx-1 {
			b.WriteString("\n")
		}
	}

	if endIdx < len(cv.rows) {
		b.WriteString("\n")
		b.WriteString(cv.styles.Separator.Render(
			fmt.Sprintf(" ↓ %d more epics ↓ ", len(cv.rows)-endIdx),
		))
	}

	return b.String()
}

func (cv *CompactView) renderEmptyState() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(cv.styles.Row.GetForeground()).
		Italic(true).
		Align(lipgloss.Center).
		Width(cv.width)

	return emptyStyle.Render("No epics to display")
}

func (cv *CompactView) renderHeader(widths columnWidths) string {
	cells := []string{
		cv.styles.HeaderCell.Width(widths.number).Render("#"),
		cv.styles.HeaderCell.Width(widths.phase).Render("Phase"),
		cv.styles.HeaderCell.Width(widths.id).Render("ID"),
		cv.styles.HeaderCell.Width(widths.title).Render("Title"),
		cv.styles.HeaderCell.Width(widths.status).Render("Status"),
	}
	if widths.waiting > 0 {
		cells = append(cells, cv.styles.HeaderCell.Width(widths.waiting).Render("Waiting on"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (cv *CompactView) renderRow(index int, row Row, widths columnWidths) string {
	isActive := index == cv.cursor

	rowStyle := cv.styles.Row
	if isActive {
		rowStyle = cv.styles.RowActive
	}

	cells := []string{
		cv.renderNumberCell(index, isActive, rowStyle, widths.number),
		cv.renderPhaseCell(row.Info, rowStyle, widths.phase),
		rowStyle.Width(widths.id).Foreground(cv.styles.ColID.GetForeground()).Bold(true).
			Render(ansi.Truncate(row.Epic.ID, widths.id-1, "…")),
		rowStyle.Width(widths.title).Render(ansi.Truncate(row.Epic.DisplayTitle(), widths.title-1, "…")),
		cv.renderStatusCell(row.Epic.Status, rowStyle, widths.status),
	}
	if widths.waiting > 0 {
		waiting := strings.Join(row.Info.Waiting, ", ")
		cells = append(cells, rowStyle.Width(widths.waiting).
			Foreground(cv.styles.ColWaiting.GetForeground()).
			Render(ansi.Truncate(waiting, widths.waiting, "…")))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (cv *CompactView) renderNumberCell(index int, isActive bool, rowStyle lipgloss.Style, width int) string {
	indicator := "  "
	if isActive {
		indicator = cv.styles.Cursor.Inherit(rowStyle).Render("▶ ")
	}
	return rowStyle.Width(width).Render(indicator + fmt.Sprintf("%2d", index+1))
}

// renderPhaseCell shows P<n>, ⟳ for cycle members and ? for epics behind a cycle
func (cv *CompactView) renderPhaseCell(info board.CardInfo, rowStyle lipgloss.Style, width int) string {
	switch {
	case info.InCycle:
		return cv.styles.Cycle.Inherit(rowStyle).Width(width).Align(lipgloss.Center).Render("⟳")
	case info.Phase == 0:
		return cv.styles.Cycle.Inherit(rowStyle).Width(width).Align(lipgloss.Center).Render("?")
	default:
		return cv.styles.ColPhase.Inherit(rowStyle).Width(width).Render(fmt.Sprintf("P%d", info.Phase))
	}
}

func (cv *CompactView) renderStatusCell(status domain.Status, rowStyle lipgloss.Style, width int) string {
	abbrev := "????"
	switch {
	case status.IsCompleted():
		abbrev = "done"
	case status.IsActive():
		abbrev = "act"
	case status == domain.StatusPlanning:
		abbrev = "plan"
	}
	return cv.styles.Status(status).Inherit(rowStyle).Width(width).Align(lipgloss.Center).Render(abbrev)
}

// columnWidths holds the calculated column widths
type columnWidths struct {
	number  int
	phase   int
	id      int
	title   int
	status  int
	waiting int
}

// calculateColumnWidths calculates responsive column widths based on
// available space. The waiting column is dropped on narrow terminals.
func (cv *CompactView) calculateColumnWidths() columnWidths {
	const (
		numberWidth  = 5
		phaseWidth   = 6
		idWidth      = 12
		statusWidth  = 6
		waitingWidth = 28
	)

	w := columnWidths{
		number: numberWidth,
		phase:  phaseWidth,
		id:     idWidth,
		status: statusWidth,
	}
	fixed := numberWidth + phaseWidth + idWidth + statusWidth
	if cv.width-fixed-waitingWidth >= 24 {
		w.waiting = waitingWidth
		fixed += waitingWidth
	}
	w.title = max(16, cv.width-fixed)
	return w
}

// calculateVisibleRows calculates how many rows fit below the header,
// leaving a line for the scroll indicator
func (cv *CompactView) calculateVisibleRows() int {
	availableHeight := cv.height - 3
	if availableHeight < 1 {
		return 1
	}
	return availableHeight
}

// ensureCursorVisible adjusts scroll offset to keep cursor visible
func (cv *CompactView) ensureCursorVisible() {
	visibleRows := cv.calculateVisibleRows()

	// Cursor is above visible area
	if cv.cursor < cv.scrollOffset {
		cv.scrollOffset = cv.cursor
	}

	// Cursor is below visible area
	if cv.cursor >= cv.scrollOffset+visibleRows {
		cv.scrollOffset = cv.cursor - visibleRows + 1
	}

	// Clamp scroll offset
	maxOffset := max(0, len(cv.rows)-visibleRows)
	if cv.scrollOffset > maxOffset {
		cv.scrollOffset = maxOffset
	}
	if cv.scrollOffset < 0 {
		cv.scrollOffset = 0
	}
}
