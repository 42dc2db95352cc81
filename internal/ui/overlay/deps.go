package overlay

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/planner"
)

// DepsResult is the dependency list chosen in the editor
type DepsResult struct {
	ID        string
	DependsOn []string
}

// DepsEditor lets the user toggle an epic's dependencies while previewing
// the phase it would land in. Applying a list that closes a cycle is refused.
type DepsEditor struct {
	epic       domain.Epic
	snapshot   []domain.Epic
	candidates []domain.Epic
	selected   map[string]bool
	cursor     int
	offset     int
	viewHeight int
	preview    planner.PreviewResult
	styles     *Styles
}

// NewDepsEditor creates an editor for epic over the given snapshot
func NewDepsEditor(epic domain.Epic, snapshot []domain.Epic) *DepsEditor {
	d := &DepsEditor{
		epic:       epic,
		snapshot:   snapshot,
		selected:   make(map[string]bool, len(epic.DependsOn)),
		viewHeight: 12,
		styles:     newStyles(),
	}
	for _, e := range snapshot {
		if e.ID != epic.ID {
			d.candidates = append(d.candidates, e)
		}
	}
	for _, id := range epic.DependsOn {
		d.selected[id] = true
	}
	d.refresh()
	return d
}

// Init initializes the editor
func (d *DepsEditor) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (d *DepsEditor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return d, func() tea.Msg { return CloseOverlayMsg{} }

	case "j", "down":
		if d.cursor < len(d.candidates)-1 {
			d.cursor++
		}
	case "k", "up":
		if d.cursor > 0 {
			d.cursor--
		}
	case "g":
		d.cursor = 0
	case "G":
		d.cursor = max(0, len(d.candidates)-1)

	case " ", "x":
		if d.cursor < len(d.candidates) {
			id := d.candidates[d.cursor].ID
			d.selected[id] = !d.selected[id]
			d.refresh()
		}

	case "enter":
		if d.preview.Cyclic {
			return d, nil
		}
		result := DepsResult{ID: d.epic.ID, DependsOn: d.DependsOn()}
		return d, func() tea.Msg {
			return SelectionMsg{Key: "deps", Value: result}
		}
	}

	d.scrollToCursor()
	return d, nil
}

// DependsOn returns the selected dependencies. Ids already on the epic that
// are missing from the snapshot keep their original position at the front.
func (d *DepsEditor) DependsOn() []string {
	deps := []string{}
	known := make(map[string]bool, len(d.candidates))
	for _, c := range d.candidates {
		known[c.ID] = true
	}
	for _, id := range d.epic.DependsOn {
		if !known[id] && d.selected[id] {
			deps = append(deps, id)
		}
	}
	for _, c := range d.candidates {
		if d.selected[c.ID] {
			deps = append(deps, c.ID)
		}
	}
	return deps
}

// Preview returns the placement of the epic with the current selection
func (d *DepsEditor) Preview() planner.PreviewResult {
	return d.preview
}

// View renders the editor
func (d *DepsEditor) View() string {
	var b strings.Builder

	b.WriteString(d.styles.Heading.Render(fmt.Sprintf("%s depends on:", d.epic.DisplayTitle())))
	b.WriteString("\n\n")

	if len(d.candidates) == 0 {
		b.WriteString(d.styles.Muted.Render("  no other epics"))
		b.WriteString("\n")
	}

	end := min(d.offset+d.viewHeight, len(d.candidates))
	for i := d.offset; i < end; i++ {
		c := d.candidates[i]
		box := "[ ]"
		if d.selected[c.ID] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s · %s", box, c.Status.Short(), c.ID, c.DisplayTitle())
		if i == d.cursor {
			b.WriteString(d.styles.Selected.Render("▶ " + line))
		} else {
			b.WriteString(d.styles.Item.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if d.preview.Cyclic {
		b.WriteString(d.styles.Key.Render("⟳ cycle: " + strings.Join(d.preview.Path, " → ")))
	} else {
		b.WriteString(d.styles.Phase.Render(fmt.Sprintf("→ would be in phase %d", d.preview.Phase)))
	}
	b.WriteString("\n")

	footer := "Space: toggle • Enter: apply • Esc: cancel"
	if d.preview.Cyclic {
		footer = "Space: toggle • Esc: cancel (a cycle cannot be applied)"
	}
	b.WriteString(d.styles.Hint.Render(footer))

	return b.String()
}

// Title returns the editor title
func (d *DepsEditor) Title() string {
	return "Dependencies · " + d.epic.ID
}

// Size returns the editor dimensions
func (d *DepsEditor) Size() (width, height int) {
	return 64, d.viewHeight + 8
}

func (d *DepsEditor) refresh() {
	d.preview = planner.PreviewIn(d.snapshot, d.epic.ID, d.DependsOn())
}

func (d *DepsEditor) scrollToCursor() {
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+d.viewHeight {
		d.offset = d.cursor - d.viewHeight + 1
	}
}
