package overlay

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// DetailPanel displays an epic with its placement, dependencies and dependents
type DetailPanel struct {
	epic       domain.Epic
	lines      []string
	scrollY    int
	viewHeight int
	styles     *Styles
}

// NewDetailPanel creates a detail panel for epic placed within view
func NewDetailPanel(epic domain.Epic, view planner.View) *DetailPanel {
	d := &DetailPanel{
		epic:       epic,
		viewHeight: 20,
		styles:     newStyles(),
	}
	d.lines = d.buildLines(view)
	return d
}

// Init initializes the detail panel
func (d *DetailPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (d *DetailPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "enter":
			return d, func() tea.Msg { return CloseOverlayMsg{} }

		case "j", "down":
			if d.scrollY < d.maxScroll() {
				d.scrollY++
			}
			return d, nil

		case "k", "up":
			if d.scrollY > 0 {
				d.scrollY--
			}
			return d, nil

		case "g":
			d.scrollY = 0
			return d, nil

		case "G":
			d.scrollY = d.maxScroll()
			return d, nil
		}
	}

	return d, nil
}

// View renders the detail panel
func (d *DetailPanel) View() string {
	end := min(d.scrollY+d.viewHeight, len(d.lines))
	out := strings.Join(d.lines[d.scrollY:end], "\n")

	if d.maxScroll() > 0 {
		out += "\n\n" + d.styles.Hint.Render(
			fmt.Sprintf("[j/k to scroll, g/G to jump] (line %d/%d)", d.scrollY+1, len(d.lines)),
		)
	}
	return out
}

// Title returns the overlay title
func (d *DetailPanel) Title() string {
	return "Epic Details"
}

// Size returns the overlay dimensions
func (d *DetailPanel) Size() (width, height int) {
	d.viewHeight = 20
	return 70, 26
}

func (d *DetailPanel) buildLines(view planner.View) []string {
	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Blue).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.Teal).
		Width(12).
		Align(lipgloss.Right)

	valueStyle := d.styles.Item
	field := func(label, value string) string {
		return labelStyle.Render(label) + "  " + valueStyle.Render(value)
	}

	e := d.epic
	lines := []string{
		headerStyle.Render(fmt.Sprintf("[%s] %s", e.ID, e.DisplayTitle())),
		"",
		field("Status:", e.Status.String()),
		field("Phase:", formatPhase(e.ID, view)),
	}
	if !e.CreatedAt.IsZero() {
		lines = append(lines, field("Created:", formatTime(e.CreatedAt)))
	}
	if !e.UpdatedAt.IsZero() {
		lines = append(lines, field("Updated:", formatTime(e.UpdatedAt)))
	}

	index := view.Index()

	lines = append(lines, "", headerStyle.Render("Depends on"))
	if len(e.DependsOn) == 0 {
		lines = append(lines, valueStyle.Render("  nothing"))
	}
	for _, depID := range e.DependsOn {
		dep, ok := index[depID]
		if !ok {
			lines = append(lines, d.styles.Muted.Render("  "+depID+" (missing, ignored)"))
			continue
		}
		lines = append(lines, valueStyle.Render(fmt.Sprintf("  %s %s · %s", dep.Status.Short(), dep.ID, dep.DisplayTitle())))
	}

	lines = append(lines, "", headerStyle.Render("Unblocks"))
	dependents := dependentsOf(e.ID, view.Epics)
	if len(dependents) == 0 {
		lines = append(lines, valueStyle.Render("  nothing"))
	}
	for _, dep := range dependents {
		lines = append(lines, valueStyle.Render(fmt.Sprintf("  %s %s · %s", dep.Status.Short(), dep.ID, dep.DisplayTitle())))
	}

	return lines
}

// maxScroll returns the maximum scroll position
func (d *DetailPanel) maxScroll() int {
	return max(0, len(d.lines)-d.viewHeight)
}

func formatPhase(id string, view planner.View) string {
	if phase, ok := view.Phase[id]; ok {
		return fmt.Sprintf("%d", phase)
	}
	if view.InCycle(id) {
		return "unresolved (on a dependency cycle)"
	}
	return "unresolved (depends on a cycle)"
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// dependentsOf returns the epics that list id among their dependencies
func dependentsOf(id string, epics []domain.Epic) []domain.Epic {
	var out []domain.Epic
	for _, e := range epics {
		for _, dep := range e.DependsOn {
			if dep == id {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
