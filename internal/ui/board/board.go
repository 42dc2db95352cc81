// Package board renders epics as a board with one column per phase.
package board

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// Render renders the board. Columns are columnWidth wide; when they do not
// all fit in width the visible window follows the cursor column.
func Render(
	columns []Column,
	cursor Cursor,
	view planner.View,
	s *styles.Styles,
	columnWidth int,
	width int,
	height int,
) string {
	if len(columns) == 0 {
		return ""
	}

	first, last := visibleRange(len(columns), cursor.Column, columnWidth, width)
	info := CardInfos(view)

	// Render each column
	var columnStrings []string
	for i := first; i < last; i++ {
		isActive := i == cursor.Column
		cursorRow := 0
		if isActive {
			cursorRow = cursor.Row
		}

		columnStr := renderColumn(columns[i], cursorRow, isActive, info, columnWidth, height, s)

		// Force consistent width using lipgloss Width
		sized := lipgloss.NewStyle().Width(columnWidth).Render(columnStr)
		columnStrings = append(columnStrings, sized)
	}

	// Join columns horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top, columnStrings...)
}

// visibleRange returns the half-open range of column indexes to draw
func visibleRange(n, cursorCol, columnWidth, width int) (int, int) {
	fit := 1
	if columnWidth > 0 {
		fit = max(1, width/columnWidth)
	}
	if fit >= n {
		return 0, n
	}

	cursorCol = max(0, min(cursorCol, n-1))
	first := 0
	if cursorCol >= fit {
		first = cursorCol - fit + 1
	}
	return first, first + fit
}

// CardInfos returns a lookup of per-epic placement: phase, cycle membership
// and the unfinished dependencies still being waited on
func CardInfos(view planner.View) func(id string) CardInfo {
	index := view.Index()
	return func(id string) CardInfo {
		info := CardInfo{
			Phase:   view.Phase[id],
			InCycle: view.InCycle(id),
		}
		for _, depID := range index[id].DependsOn {
			dep, ok := index[depID]
			if !ok || dep.Status == domain.StatusCompleted {
				continue
			}
			info.Waiting = append(info.Waiting, dep.DisplayTitle())
		}
		return info
	}
}
