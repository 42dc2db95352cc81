// Package navigation provides cursor and navigation state management
package navigation

import (
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/board"
)

// Position represents a computed position in the board
type Position struct {
	Column int  // Column index (phases, then the cycle column)
	Row    int  // Index within the column
	Valid  bool // Whether the position is valid
}

// Cursor tracks the selected epic by ID, so it survives reloads that move
// the epic to another phase
type Cursor struct {
	EpicID         string // Primary state: selected epic ID
	FallbackColumn int    // Column to use when EpicID not found
}

// FindPosition computes the position of the cursor's epic in the given columns
func (c *Cursor) FindPosition(columns []board.Column) Position {
	if c.EpicID != "" {
		for colIdx, col := range columns {
			for row, e := range col.Epics {
				if e.ID == c.EpicID {
					return Position{Column: colIdx, Row: row, Valid: true}
				}
			}
		}
	}

	// No epic selected or it is gone: fallback column, first epic
	col := c.FallbackColumn
	if col >= len(columns) {
		col = len(columns) - 1
	}
	if col < 0 {
		col = 0
	}
	if col < len(columns) && len(columns[col].Epics) > 0 {
		return Position{Column: col, Row: 0, Valid: true}
	}
	return Position{Column: col, Row: 0, Valid: false}
}

// SetEpic updates the cursor to point to a specific epic
func (c *Cursor) SetEpic(epicID string, column int) {
	c.EpicID = epicID
	c.FallbackColumn = column
}

// MoveVertical moves up or down within a column, returns new epic ID
func (c *Cursor) MoveVertical(columns []board.Column, delta int) string {
	pos := c.FindPosition(columns)
	if !pos.Valid || pos.Column >= len(columns) {
		return c.EpicID
	}

	col := columns[pos.Column]
	newIdx := pos.Row + delta

	// Clamp to column bounds
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(col.Epics) {
		newIdx = len(col.Epics) - 1
	}

	if newIdx >= 0 && newIdx < len(col.Epics) {
		c.EpicID = col.Epics[newIdx].ID
		c.FallbackColumn = pos.Column
	}
	return c.EpicID
}

// MoveHorizontal moves left or right to adjacent column
func (c *Cursor) MoveHorizontal(columns []board.Column, delta int) string {
	pos := c.FindPosition(columns)
	return c.JumpToColumn(columns, pos.Column+delta)
}

// JumpToStart moves to first epic in current column
func (c *Cursor) JumpToStart(columns []board.Column) string {
	pos := c.FindPosition(columns)
	if pos.Column < len(columns) && len(columns[pos.Column].Epics) > 0 {
		c.EpicID = columns[pos.Column].Epics[0].ID
	}
	return c.EpicID
}

// JumpToEnd moves to last epic in current column
func (c *Cursor) JumpToEnd(columns []board.Column) string {
	pos := c.FindPosition(columns)
	if pos.Column < len(columns) {
		col := columns[pos.Column]
		if len(col.Epics) > 0 {
			c.EpicID = col.Epics[len(col.Epics)-1].ID
		}
	}
	return c.EpicID
}

// JumpToColumn moves to a specific column, keeping relative row position
func (c *Cursor) JumpToColumn(columns []board.Column, colIdx int) string {
	if colIdx >= len(columns) {
		colIdx = len(columns) - 1
	}
	if colIdx < 0 {
		colIdx = 0
	}

	pos := c.FindPosition(columns)
	c.FallbackColumn = colIdx

	if colIdx < len(columns) && len(columns[colIdx].Epics) > 0 {
		// Try to keep same row position, or clamp to column size
		row := pos.Row
		if row >= len(columns[colIdx].Epics) {
			row = len(columns[colIdx].Epics) - 1
		}
		c.EpicID = columns[colIdx].Epics[row].ID
	} else {
		c.EpicID = "" // No epic in target column
	}
	return c.EpicID
}

// Service manages navigation state
type Service struct {
	cursor Cursor
}

// NewService creates a new navigation service
func NewService() *Service {
	return &Service{
		cursor: Cursor{},
	}
}

// GetCursor returns the current cursor (for read access)
func (s *Service) GetCursor() *Cursor {
	return &s.cursor
}

// GetPosition returns the computed position of the cursor in the given columns
func (s *Service) GetPosition(columns []board.Column) Position {
	return s.cursor.FindPosition(columns)
}

// BoardCursor converts the cursor into the board's render cursor
func (s *Service) BoardCursor(columns []board.Column) board.Cursor {
	pos := s.cursor.FindPosition(columns)
	return board.Cursor{Column: pos.Column, Row: pos.Row}
}

// GetCurrentEpic returns the currently selected epic, or nil
func (s *Service) GetCurrentEpic(columns []board.Column) *domain.Epic {
	pos := s.cursor.FindPosition(columns)
	if !pos.Valid || pos.Column >= len(columns) {
		return nil
	}

	col := columns[pos.Column]
	if pos.Row >= len(col.Epics) {
		return nil
	}

	e := col.Epics[pos.Row]
	return &e
}

// MoveDown moves cursor down in current column
func (s *Service) MoveDown(columns []board.Column) {
	s.cursor.MoveVertical(columns, 1)
}

// MoveUp moves cursor up in current column
func (s *Service) MoveUp(columns []board.Column) {
	s.cursor.MoveVertical(columns, -1)
}

// MoveLeft moves cursor to left column
func (s *Service) MoveLeft(columns []board.Column) {
	s.cursor.MoveHorizontal(columns, -1)
}

// MoveRight moves cursor to right column
func (s *Service) MoveRight(columns []board.Column) {
	s.cursor.MoveHorizontal(columns, 1)
}

// HalfPageDown moves cursor half a page down
func (s *Service) HalfPageDown(columns []board.Column, halfPage int) {
	s.cursor.MoveVertical(columns, halfPage)
}

// HalfPageUp moves cursor half a page up
func (s *Service) HalfPageUp(columns []board.Column, halfPage int) {
	s.cursor.MoveVertical(columns, -halfPage)
}

// GotoTop moves cursor to first epic in column
func (s *Service) GotoTop(columns []board.Column) {
	s.cursor.JumpToStart(columns)
}

// GotoBottom moves cursor to last epic in column
func (s *Service) GotoBottom(columns []board.Column) {
	s.cursor.JumpToEnd(columns)
}

// GotoFirstColumn moves cursor to first column
func (s *Service) GotoFirstColumn(columns []board.Column) {
	s.cursor.JumpToColumn(columns, 0)
}

// GotoLastColumn moves cursor to last column
func (s *Service) GotoLastColumn(columns []board.Column) {
	s.cursor.JumpToColumn(columns, len(columns)-1)
}

// MoveInOrder moves delta epics through the board in reading order, down
// each column and on into the next. The list view navigates this way.
func (s *Service) MoveInOrder(columns []board.Column, delta int) {
	type slot struct {
		id  string
		col int
	}
	var order []slot
	for colIdx, col := range columns {
		for _, e := range col.Epics {
			order = append(order, slot{id: e.ID, col: colIdx})
		}
	}
	if len(order) == 0 {
		return
	}

	pos := s.cursor.FindPosition(columns)
	current := 0
	if pos.Valid {
		for i, sl := range order {
			if sl.col == pos.Column && sl.id == columns[pos.Column].Epics[pos.Row].ID {
				current = i
				break
			}
		}
	}

	next := max(0, min(current+delta, len(order)-1))
	s.cursor.SetEpic(order[next].id, order[next].col)
}

// SelectEpic directly sets the cursor to a specific epic
func (s *Service) SelectEpic(epicID string, column int) {
	s.cursor.SetEpic(epicID, column)
}

// JumpToEpicByID finds and selects an epic by ID
func (s *Service) JumpToEpicByID(columns []board.Column, epicID string) bool {
	for colIdx, col := range columns {
		for _, e := range col.Epics {
			if e.ID == epicID {
				s.cursor.SetEpic(e.ID, colIdx)
				return true
			}
		}
	}
	return false
}
