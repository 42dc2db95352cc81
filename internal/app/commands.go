package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// ReloadMsg asks the board to reload its epics, e.g. after the snapshot
// file changed on disk
type ReloadMsg struct{}

// Message types for async operations

type epicsLoadedMsg struct {
	view planner.View
}

type loadErrorMsg struct {
	err error
}

type statusChangedMsg struct {
	id     string
	status domain.Status
}

type depsSavedMsg struct {
	epic domain.Epic
	view planner.View
}

type epicAddedMsg struct {
	epic domain.Epic
	view planner.View
}

type actionErrorMsg struct {
	op  string
	id  string
	err error
}

type tickMsg time.Time

const commandTimeout = 5 * time.Second

// Commands

// loadEpicsCmd reads the epics and lays them out in phases
func (m Model) loadEpicsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		view, err := m.planner.View(ctx)
		if err != nil {
			return loadErrorMsg{err: err}
		}
		return epicsLoadedMsg{view: view}
	}
}

// cycleStatusCmd advances an epic to its next status
func (m Model) cycleStatusCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		status, err := m.planner.CycleStatus(ctx, id)
		if err != nil {
			return actionErrorMsg{op: "status", id: id, err: err}
		}
		return statusChangedMsg{id: id, status: status}
	}
}

// setDepsCmd writes a dependency list and reloads the view
func (m Model) setDepsCmd(id string, deps []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		epic, err := m.planner.SetDependsOn(ctx, id, deps)
		if err != nil {
			return actionErrorMsg{op: "dependencies", id: id, err: err}
		}
		view, err := m.planner.View(ctx)
		if err != nil {
			return loadErrorMsg{err: err}
		}
		return depsSavedMsg{epic: epic, view: view}
	}
}

// createEpicCmd adds an epic and reloads the view
func (m Model) createEpicCmd(e domain.Epic) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		created, err := m.planner.Create(ctx, e)
		if err != nil {
			return actionErrorMsg{op: "add", id: e.ID, err: err}
		}
		view, err := m.planner.View(ctx)
		if err != nil {
			return loadErrorMsg{err: err}
		}
		return epicAddedMsg{epic: created, view: view}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
