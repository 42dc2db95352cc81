package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/overlay"
)

// handleKey processes keyboard input based on current mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (work in any mode)
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+l":
		return m, tea.ClearScreen
	}

	if msg.String() == "esc" && m.mode != ModeNormal {
		m.mode = ModeNormal
		return m, nil
	}

	switch m.mode {
	case ModeGoto:
		return m.handleGotoMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNormalMode processes keyboard input in normal mode
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.columns

	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Vertical navigation
	case "j", "down":
		m.moveVertical(1)
	case "k", "up":
		m.moveVertical(-1)
	case "ctrl+d":
		m.moveVertical(m.halfPage())
	case "ctrl+u":
		m.moveVertical(-m.halfPage())
	case "G":
		if m.listView {
			m.nav.MoveInOrder(columns, len(m.view.Epics))
		} else {
			m.nav.GotoBottom(columns)
		}

	// Horizontal navigation
	case "h", "left":
		m.nav.MoveLeft(columns)
	case "l", "right":
		m.nav.MoveRight(columns)

	case "g":
		m.mode = ModeGoto

	case "/":
		if cur := m.nav.GetCurrentEpic(columns); cur != nil {
			m.searchOrigin = cur.ID
		}
		m.mode = ModeSearch
		return m, m.overlayStack.Push(overlay.NewSearchOverlay())

	case "?":
		return m, m.overlayStack.Push(overlay.NewHelpOverlay())

	case "H":
		m.hideCompleted = !m.hideCompleted
		m.setView(m.view)

	case "f":
		return m, m.overlayStack.Push(overlay.NewFilterMenu(m.filter))

	case "v":
		m.listView = !m.listView

	case "a":
		return m, m.overlayStack.Push(overlay.NewCreateEpicOverlay())

	case "r":
		return m, m.loadEpicsCmd()

	case "enter":
		if cur := m.nav.GetCurrentEpic(columns); cur != nil {
			return m, m.overlayStack.Push(overlay.NewDetailPanel(*cur, m.view))
		}

	case "s":
		if cur := m.nav.GetCurrentEpic(columns); cur != nil {
			return m, m.cycleStatusCmd(cur.ID)
		}

	case "d":
		if cur := m.nav.GetCurrentEpic(columns); cur != nil {
			return m, m.overlayStack.Push(overlay.NewDepsEditor(*cur, m.view.Epics))
		}

	case "x":
		if cur := m.nav.GetCurrentEpic(columns); cur != nil && len(cur.DependsOn) > 0 {
			m.pendingClear = cur.ID
			dialog := overlay.NewConfirmDialog(
				"Clear dependencies",
				fmt.Sprintf("Remove every dependency of %s? It moves to phase 1.", cur.ID),
			).WithDetails(m.describeDeps(cur.DependsOn)...)
			return m, m.overlayStack.Push(dialog)
		}
	}

	return m, nil
}

// describeDeps labels dependency ids with their title and phase
func (m Model) describeDeps(ids []string) []string {
	index := m.view.Index()
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		dep, ok := index[id]
		switch {
		case !ok:
			lines = append(lines, id+" (missing)")
		case m.view.Phase[id] > 0:
			lines = append(lines, fmt.Sprintf("%s %s (phase %d)", id, dep.DisplayTitle(), m.view.Phase[id]))
		default:
			lines = append(lines, fmt.Sprintf("%s %s (unresolved)", id, dep.DisplayTitle()))
		}
	}
	return lines
}

// moveVertical moves within the phase column on the board, and through
// every epic in order in the list
func (m Model) moveVertical(delta int) {
	if m.listView {
		m.nav.MoveInOrder(m.columns, delta)
		return
	}
	if delta > 0 {
		m.nav.HalfPageDown(m.columns, delta)
	} else {
		m.nav.HalfPageUp(m.columns, -delta)
	}
}

// handleGotoMode processes the second key of a g-prefixed jump
func (m Model) handleGotoMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.columns
	m.mode = ModeNormal

	switch msg.String() {
	case "g":
		if m.listView {
			m.nav.MoveInOrder(columns, -len(m.view.Epics))
		} else {
			m.nav.GotoTop(columns)
		}
	case "e":
		if m.listView {
			m.nav.MoveInOrder(columns, len(m.view.Epics))
		} else {
			m.nav.GotoBottom(columns)
		}
	case "h":
		m.nav.GotoFirstColumn(columns)
	case "l":
		m.nav.GotoLastColumn(columns)
	case "c":
		if n := len(columns); n > 0 && columns[n-1].Cycle {
			m.nav.GotoLastColumn(columns)
		}
	}

	return m, nil
}

// handleOverlayKey routes keys to the open overlay
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	cmd := m.overlayStack.Update(msg)
	return m, cmd
}

// handleSelection applies the result of an overlay
func (m Model) handleSelection(msg overlay.SelectionMsg) (tea.Model, tea.Cmd) {
	switch value := msg.Value.(type) {
	case overlay.DepsResult:
		m.overlayStack.Pop()
		return m, m.setDepsCmd(value.ID, value.DependsOn)

	case overlay.ConfirmResult:
		m.overlayStack.Pop()
		id := m.pendingClear
		m.pendingClear = ""
		if value.Confirmed && id != "" {
			return m, m.setDepsCmd(id, []string{})
		}
	}

	return m, nil
}

// handleSearch moves the cursor to the requested epic matching the query,
// wrapping the match index around. A cancelled search puts the cursor back
// where it started.
func (m Model) handleSearch(msg overlay.SearchMsg) Model {
	if msg.Cancelled {
		if m.searchOrigin != "" {
			m.nav.JumpToEpicByID(m.columns, m.searchOrigin)
		}
		m.searchOrigin = ""
		return m
	}

	matches := m.findEpics(msg.Query)
	if search, ok := m.overlayStack.Current().(*overlay.SearchOverlay); ok {
		search.SetMatchCount(len(matches))
	}
	if n := len(matches); n > 0 {
		m.nav.JumpToEpicByID(m.columns, matches[((msg.Match%n)+n)%n])
	}
	return m
}

// findEpics returns the ids of visible epics whose id or title contains
// query, in board order
func (m Model) findEpics(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	match := domain.Filter{SearchQuery: query}
	var ids []string
	for _, col := range m.columns {
		for _, e := range col.Epics {
			if match.Matches(e) {
				ids = append(ids, e.ID)
			}
		}
	}
	return ids
}
