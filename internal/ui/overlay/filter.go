package overlay

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// FilterChangedMsg is sent after every toggle so the board can rebuild its
// columns while the menu stays open
type FilterChangedMsg struct{}

// FilterMenu is a menu overlay toggling which statuses the board shows.
// Phases are still computed from every epic.
type FilterMenu struct {
	filter *domain.Filter
	styles *Styles
}

// NewFilterMenu creates a new filter menu for the given filter
func NewFilterMenu(filter *domain.Filter) *FilterMenu {
	return &FilterMenu{
		filter: filter,
		styles: newStyles(),
	}
}

// Init initializes the menu
func (m *FilterMenu) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *FilterMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q", "enter", "f":
		return m, func() tea.Msg { return CloseOverlayMsg{} }

	case "p":
		m.filter.ToggleStatus(domain.StatusPlanning)
	case "a":
		m.filter.ToggleStatus(domain.StatusActive)
	case "c":
		m.filter.ToggleStatus(domain.StatusCompleted)
	case "x":
		m.filter.Clear()

	default:
		return m, nil
	}

	return m, func() tea.Msg { return FilterChangedMsg{} }
}

// filterOption represents a single filter option
type filterOption struct {
	key    string
	label  string
	active bool
}

// View renders the menu
func (m *FilterMenu) View() string {
	var b strings.Builder

	b.WriteString(m.renderFilterLine("Status", []filterOption{
		{key: "p", label: "Planning", active: m.filter.HasStatus(domain.StatusPlanning)},
		{key: "a", label: "Active", active: m.filter.HasStatus(domain.StatusActive)},
		{key: "c", label: "Completed", active: m.filter.HasStatus(domain.StatusCompleted)},
	}))

	b.WriteString(m.styles.Rule.Render("────────────────────────────────────────"))
	b.WriteString("\n")

	line := m.styles.Key.Render("[x]") + " " +
		m.styles.Item.Render("Clear all filters")
	b.WriteString(line)
	b.WriteString("\n\n")

	hint := "No filter: every epic is shown"
	if m.filter.IsActive() {
		hint = "Phases still count hidden epics"
	}
	b.WriteString(m.styles.Hint.Render(hint))

	return b.String()
}

// renderFilterLine renders a filter category line
func (m *FilterMenu) renderFilterLine(category string, options []filterOption) string {
	var b strings.Builder

	b.WriteString(m.styles.Item.Render(category + ":"))
	b.WriteString(" ")

	for i, opt := range options {
		if i > 0 {
			b.WriteString(" ")
		}

		indicator := " "
		style := m.styles.Item
		if opt.active {
			indicator = "●"
			style = m.styles.Selected
		}

		optStr := fmt.Sprintf("%s=%s", opt.key, opt.label)
		b.WriteString(style.Render(fmt.Sprintf("[%s%s]", indicator, optStr)))
	}

	b.WriteString("\n")
	return b.String()
}

// Title returns the overlay title
func (m *FilterMenu) Title() string {
	return "Filter Epics"
}

// Size returns the overlay dimensions
func (m *FilterMenu) Size() (width, height int) {
	return 56, 9
}
