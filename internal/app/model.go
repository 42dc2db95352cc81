// Package app contains the board's application model and TEA implementation.
package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/config"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/navigation"
	"github.com/riordanpawley/epicboard/internal/services/planner"
	"github.com/riordanpawley/epicboard/internal/types"
	"github.com/riordanpawley/epicboard/internal/ui/board"
	"github.com/riordanpawley/epicboard/internal/ui/compact"
	"github.com/riordanpawley/epicboard/internal/ui/overlay"
	"github.com/riordanpawley/epicboard/internal/ui/statusbar"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
	"github.com/riordanpawley/epicboard/internal/ui/toast"
)

// Re-export Mode type and constants for convenience
type Mode = types.Mode

const (
	ModeNormal = types.ModeNormal
	ModeGoto   = types.ModeGoto
	ModeSearch = types.ModeSearch
)

// Re-export Toast type and constants for convenience
type Toast = types.Toast
type ToastLevel = types.ToastLevel

const (
	ToastInfo    = types.ToastInfo
	ToastSuccess = types.ToastSuccess
	ToastWarning = types.ToastWarning
	ToastError   = types.ToastError
)

// Options describe where the board's epics come from
type Options struct {
	// Source labels the epic source in the status bar
	Source string
	// Watching is set when the source file is watched for changes
	Watching bool
}

// Model is the main application state
type Model struct {
	// Core data
	planner *planner.Planner
	view    planner.View
	columns []board.Column

	// Navigation
	nav          *navigation.Service
	mode         Mode
	searchOrigin string

	// UI state
	overlayStack  *overlay.Stack
	listView      bool
	list          *compact.CompactView
	hideCompleted bool
	filter        *domain.Filter
	pendingClear  string

	// Toasts
	toasts []Toast

	// Terminal size
	width  int
	height int

	styles *styles.Styles
	config *config.Config
	opts   Options

	// Loading state
	loading     bool
	spinner     spinner.Model
	lastRefresh time.Time

	logger *slog.Logger
}

// New creates a new board model reading epics through p
func New(cfg *config.Config, p *planner.Planner, logger *slog.Logger, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	return Model{
		planner:       p,
		nav:           navigation.NewService(),
		mode:          ModeNormal,
		overlayStack:  overlay.NewStack(),
		listView:      cfg.Board.StartInList,
		list:          compact.NewCompactView(0, 0),
		hideCompleted: cfg.Board.HideCompletedPhases,
		filter:        domain.NewFilter(),
		toasts:        []Toast{},
		styles:        styles.New(),
		config:        cfg,
		opts:          opts,
		loading:       true,
		spinner:       s,
		logger:        logger,
	}
}

// Init returns the initial command for the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadEpicsCmd(),
		tickEvery(time.Second),
	)
}

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.overlayStack.IsEmpty() {
			return m.handleOverlayKey(msg)
		}
		return m.handleKey(msg)

	case overlay.CloseOverlayMsg:
		m.overlayStack.Pop()
		if m.mode == ModeSearch {
			m.mode = ModeNormal
		}
		return m, nil

	case overlay.SelectionMsg:
		return m.handleSelection(msg)

	case overlay.SearchMsg:
		return m.handleSearch(msg), nil

	case overlay.FilterChangedMsg:
		m.setView(m.view)
		return m, nil

	case ReloadMsg:
		m.logger.Debug("reload requested")
		return m, m.loadEpicsCmd()

	case epicsLoadedMsg:
		wasLoading := m.loading
		m.setView(msg.view)
		m.loading = false
		m.lastRefresh = time.Now()
		if wasLoading {
			m.addToast(types.NewToast(ToastSuccess, fmt.Sprintf("Loaded %d epics", len(msg.view.Epics)), 3*time.Second))
			if msg.view.HasCycles() {
				m.addToast(types.NewToast(ToastWarning, cycleWarning(msg.view), 6*time.Second))
			}
		}
		return m, nil

	case loadErrorMsg:
		m.loading = false
		m.logger.Error("failed to load epics", "error", msg.err)
		m.addToast(types.NewToast(ToastError, msg.err.Error(), 8*time.Second))
		return m, nil

	case statusChangedMsg:
		m.addToast(types.NewToast(ToastSuccess, fmt.Sprintf("%s → %s", msg.id, msg.status), 2*time.Second))
		return m, m.loadEpicsCmd()

	case depsSavedMsg:
		phase := "unresolved"
		if p, ok := msg.view.Phase[msg.epic.ID]; ok {
			phase = fmt.Sprintf("phase %d", p)
		}
		m.setView(msg.view)
		m.nav.JumpToEpicByID(m.columns, msg.epic.ID)
		m.addToast(types.NewToast(ToastSuccess, fmt.Sprintf("%s now in %s", msg.epic.ID, phase), 3*time.Second))
		return m, nil

	case overlay.EpicCreatedMsg:
		return m, m.createEpicCmd(msg.Epic)

	case epicAddedMsg:
		m.setView(msg.view)
		m.nav.JumpToEpicByID(m.columns, msg.epic.ID)
		m.addToast(types.NewToast(ToastSuccess, fmt.Sprintf("Added %s", msg.epic.ID), 3*time.Second))
		return m, nil

	case actionErrorMsg:
		m.logger.Warn("board action failed", "op", msg.op, "epic", msg.id, "error", msg.err)
		m.addToast(types.NewToast(ToastError, fmt.Sprintf("%s %s: %v", msg.op, msg.id, msg.err), 5*time.Second))
		return m, nil

	case tickMsg:
		m.expireToasts()
		return m, tickEvery(time.Second)
	}

	return m, nil
}

// View renders the current state as a string
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.loading {
		return m.renderLoading()
	}

	sb := statusbar.New(m.mode, m.width, m.styles).WithInfo(m.statusInfo())
	statusBarView := sb.Render()
	available := m.height - lipgloss.Height(statusBarView)

	// Full-width overlays (the search bar) sit above the status bar
	var bottom []string
	if current := m.overlayStack.Current(); current != nil {
		if w, _ := current.Size(); w == 0 {
			bottom = append(bottom, current.View())
		}
	}

	// Toasts in the bottom-right corner
	if len(m.toasts) > 0 {
		toastView := toast.New(m.styles).Render(m.toasts, m.width)
		if toastView != "" {
			bottom = append(bottom, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toastView))
		}
	}
	for _, b := range bottom {
		available -= lipgloss.Height(b)
	}

	var mainView string
	if current := m.overlayStack.Current(); current != nil {
		if w, _ := current.Size(); w != 0 {
			mainView = m.renderModal(current, available)
		}
	}
	if mainView == "" {
		mainView = m.renderBoardView(available)
	}

	parts := append([]string{mainView}, bottom...)
	parts = append(parts, statusBarView)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderBoardView renders the phase columns, or the list, into height lines
func (m Model) renderBoardView(height int) string {
	if height <= 0 {
		return ""
	}

	var content string
	if len(m.columns) == 0 {
		msg := "No epics yet. Add one with: epicboard epic add <title>"
		switch {
		case len(m.view.Epics) == 0:
		case m.filter.IsActive():
			msg = "No epics match the filter. Press f to change it."
		default:
			msg = "Every phase is completed. Press H to show completed phases."
		}
		content = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.styles.StatusHint.Render(msg))
	} else if m.listView {
		m.list.SetDimensions(m.width, height)
		m.list.SetRows(compact.RowsFromColumns(m.columns, board.CardInfos(m.view)))
		if cur := m.nav.GetCurrentEpic(m.columns); cur != nil {
			m.list.SetCursorID(cur.ID)
		}
		content = m.list.Render()
	} else {
		// Column header and borders take four lines
		content = board.Render(
			m.columns,
			m.nav.BoardCursor(m.columns),
			m.view,
			m.styles,
			m.columnWidth(),
			m.width,
			max(1, height-4),
		)
	}

	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(content)
}

// renderModal renders a centered modal overlay with border and title
func (m Model) renderModal(current overlay.Overlay, height int) string {
	overlayWidth, overlayHeight := current.Size()

	overlayView := current.View()
	if title := current.Title(); title != "" {
		overlayView = lipgloss.JoinVertical(lipgloss.Left, m.styles.OverlayTitle.Render(title), overlayView)
	}
	overlayView = m.styles.Overlay.
		Width(min(overlayWidth, max(10, m.width-4))).
		MaxHeight(min(overlayHeight+2, height)).
		Render(overlayView)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, overlayView)
}

// renderLoading renders a centered loading spinner with message
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.spinner.View(),
		"Loading epics...",
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// statusInfo summarizes the board for the right side of the status bar
func (m Model) statusInfo() string {
	parts := []string{
		fmt.Sprintf("%d epics", len(m.view.Epics)),
		fmt.Sprintf("%d phases", len(m.view.Groups)),
	}
	if n := len(m.view.Unresolved); n > 0 {
		parts = append(parts, fmt.Sprintf("⟳ %d", n))
	}
	if m.hideCompleted {
		parts = append(parts, "completed hidden")
	}
	if m.filter.IsActive() {
		parts = append(parts, "filtered")
	}
	if m.listView {
		parts = append(parts, "list")
	}
	if m.opts.Source != "" {
		source := m.opts.Source
		if m.opts.Watching {
			source += " (watching)"
		}
		parts = append(parts, source)
	}
	return strings.Join(parts, " · ")
}

// setView replaces the snapshot and rebuilds the columns
func (m *Model) setView(view planner.View) {
	m.view = view
	m.columns = board.FilterColumns(board.Columns(view, m.hideCompleted), m.filter)
}

func (m Model) columnWidth() int {
	if m.config != nil && m.config.Board.ColumnWidth > 0 {
		return m.config.Board.ColumnWidth
	}
	return 32
}

// halfPage calculates half-page scroll distance based on terminal height
func (m Model) halfPage() int {
	if m.listView {
		return max(1, (m.height-4)/2)
	}
	// Cards are about six lines tall once borders are counted
	visibleRows := m.height - 5
	if visibleRows < 6 {
		return 1
	}
	return max(1, visibleRows/6/2)
}

// addToast adds a toast notification to the list
func (m *Model) addToast(t Toast) {
	m.toasts = append(m.toasts, t)
}

// expireToasts removes expired toasts from the list
func (m *Model) expireToasts() {
	now := time.Now()
	filtered := make([]Toast, 0, len(m.toasts))
	for _, t := range m.toasts {
		if !t.Expired(now) {
			filtered = append(filtered, t)
		}
	}
	m.toasts = filtered
}

func cycleWarning(view planner.View) string {
	if len(view.CycleMembers) == 0 {
		return fmt.Sprintf("%d epics depend on a cycle", len(view.Unresolved))
	}
	return "Dependency cycle through " + strings.Join(view.CycleMembers, ", ")
}
