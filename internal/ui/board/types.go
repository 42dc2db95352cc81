package board

import (
	"fmt"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// Column is one phase on the board, or the trailing cycle column
type Column struct {
	Phase     int // 0 for the cycle column
	Status    domain.PhaseStatus
	Completed int
	Total     int
	Cycle     bool
	Epics     []domain.Epic
}

// Title returns the column header text, e.g. "Phase 2 · in_progress · 1/3"
func (c Column) Title() string {
	if c.Cycle {
		return fmt.Sprintf("⟳ Cycle · %d", len(c.Epics))
	}
	return fmt.Sprintf("Phase %d · %s · %d/%d", c.Phase, c.Status, c.Completed, c.Total)
}

// Cursor represents the current cursor position
type Cursor struct {
	Column int // Column index
	Row    int // Epic index within column
}

// Columns lays a view out as board columns: one per phase in order, then a
// cycle column when some epics could not be placed. With hideCompleted set,
// completed phases are left out.
func Columns(view planner.View, hideCompleted bool) []Column {
	columns := make([]Column, 0, len(view.Groups)+1)
	for _, g := range view.Groups {
		if hideCompleted && g.Status == domain.PhaseCompleted {
			continue
		}
		columns = append(columns, Column{
			Phase:     g.Number,
			Status:    g.Status,
			Completed: g.CompletedCount,
			Total:     g.TotalCount,
			Epics:     g.Epics,
		})
	}
	if len(view.Unresolved) > 0 {
		columns = append(columns, Column{
			Cycle: true,
			Total: len(view.Unresolved),
			Epics: view.Unresolved,
		})
	}
	return columns
}

// FilterColumns keeps the epics that pass f. Columns left empty are dropped;
// counts in the headers still describe the whole phase.
func FilterColumns(columns []Column, f *domain.Filter) []Column {
	if f == nil || !f.IsActive() {
		return columns
	}

	result := make([]Column, 0, len(columns))
	for _, col := range columns {
		col.Epics = f.Apply(col.Epics)
		if len(col.Epics) > 0 {
			result = append(result, col)
		}
	}
	return result
}

// CreatePlaceholderData creates sample columns for rendering tests
func CreatePlaceholderData() planner.View {
	return planner.Compute([]domain.Epic{
		{ID: "ep-1", Title: "Database schema", Status: domain.StatusCompleted},
		{ID: "ep-2", Title: "Authentication service", Status: domain.StatusActive, DependsOn: []string{"ep-1"}},
		{ID: "ep-3", Title: "Billing API", Status: domain.StatusPlanning, DependsOn: []string{"ep-1"}},
		{ID: "ep-4", Title: "Customer dashboard with usage graphs", Status: domain.StatusPlanning, DependsOn: []string{"ep-2", "ep-3"}},
		{ID: "ep-5", Title: "Audit log", Status: domain.StatusPlanning, DependsOn: []string{"ep-6"}},
		{ID: "ep-6", Title: "Retention policy", Status: domain.StatusPlanning, DependsOn: []string{"ep-5"}},
	})
}
