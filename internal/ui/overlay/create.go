package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// EpicCreatedMsg is emitted when the form is submitted. An empty ID asks
// the store to generate one.
type EpicCreatedMsg struct {
	Epic domain.Epic
}

// CreateEpicOverlay provides a form to add a new epic
type CreateEpicOverlay struct {
	title      textinput.Model
	id         textinput.Model
	status     domain.Status
	focusIndex int
	styles     *Styles
}

const (
	focusTitle = iota
	focusID
	focusStatus
	focusSubmit
	focusCount
)

// NewCreateEpicOverlay creates a new epic creation overlay
func NewCreateEpicOverlay() *CreateEpicOverlay {
	ti := textinput.New()
	ti.Placeholder = "Epic title..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 48

	id := textinput.New()
	id.Placeholder = "generated when empty"
	id.CharLimit = 64
	id.Width = 48

	return &CreateEpicOverlay{
		title:      ti,
		id:         id,
		status:     domain.StatusPlanning,
		focusIndex: focusTitle,
		styles:     newStyles(),
	}
}

// Init initializes the overlay
func (c *CreateEpicOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (c *CreateEpicOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return c, func() tea.Msg { return CloseOverlayMsg{} }

		case "ctrl+s":
			return c, c.submit()

		case "tab", "down":
			c.setFocus((c.focusIndex + 1) % focusCount)
			return c, nil

		case "shift+tab", "up":
			c.setFocus((c.focusIndex - 1 + focusCount) % focusCount)
			return c, nil

		case "enter":
			if c.focusIndex == focusSubmit {
				return c, c.submit()
			}
			c.setFocus(c.focusIndex + 1)
			return c, nil
		}

		if c.focusIndex == focusStatus {
			switch keyMsg.String() {
			case "p":
				c.status = domain.StatusPlanning
			case "a":
				c.status = domain.StatusActive
			case "c":
				c.status = domain.StatusCompleted
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	switch c.focusIndex {
	case focusTitle:
		c.title, cmd = c.title.Update(msg)
	case focusID:
		c.id, cmd = c.id.Update(msg)
	}
	return c, cmd
}

func (c *CreateEpicOverlay) setFocus(index int) {
	c.focusIndex = index
	c.title.Blur()
	c.id.Blur()
	switch index {
	case focusTitle:
		c.title.Focus()
	case focusID:
		c.id.Focus()
	}
}

// View renders the form
func (c *CreateEpicOverlay) View() string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.Teal).
		Width(8).
		Align(lipgloss.Right)

	focusStyle := labelStyle.
		Foreground(styles.Blue).
		Bold(true)

	label := func(text string, index int) string {
		if c.focusIndex == index {
			return focusStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	b.WriteString(label("Title:", focusTitle))
	b.WriteString("  ")
	b.WriteString(c.title.View())
	b.WriteString("\n\n")

	b.WriteString(label("ID:", focusID))
	b.WriteString("  ")
	b.WriteString(c.id.View())
	b.WriteString("\n\n")

	b.WriteString(label("Status:", focusStatus))
	b.WriteString("  ")
	b.WriteString(c.renderStatusSelector())
	b.WriteString("\n\n")

	b.WriteString(c.styles.Rule.Render(strings.Repeat("─", 56)))
	b.WriteString("\n\n")

	submitStyle := c.styles.Item
	if c.focusIndex == focusSubmit {
		submitStyle = c.styles.Selected
	}
	b.WriteString(submitStyle.Render("[ Add Epic ]"))
	b.WriteString("\n\n")

	hints := []string{
		c.styles.Key.Render("Tab") + " " + c.styles.Hint.Render("Switch fields"),
		c.styles.Key.Render("Ctrl+S") + " " + c.styles.Hint.Render("Submit"),
		c.styles.Key.Render("Esc") + " " + c.styles.Hint.Render("Cancel"),
	}
	b.WriteString(c.styles.Hint.Render(strings.Join(hints, " • ")))

	return b.String()
}

// renderStatusSelector renders the status choices with the current one marked
func (c *CreateEpicOverlay) renderStatusSelector() string {
	statuses := []struct {
		key    string
		status domain.Status
	}{
		{"p", domain.StatusPlanning},
		{"a", domain.StatusActive},
		{"c", domain.StatusCompleted},
	}

	var parts []string
	for _, s := range statuses {
		style := c.styles.Item
		indicator := " "
		if s.status == c.status {
			style = c.styles.Selected
			indicator = "●"
		}
		parts = append(parts, style.Render(fmt.Sprintf("[%s%s=%s]", indicator, s.key, s.status)))
	}

	return strings.Join(parts, " ")
}

// submit emits EpicCreatedMsg and closes the overlay. An empty title keeps
// the form open.
func (c *CreateEpicOverlay) submit() tea.Cmd {
	title := strings.TrimSpace(c.title.Value())
	if title == "" {
		c.setFocus(focusTitle)
		return nil
	}

	e := domain.Epic{
		ID:     strings.TrimSpace(c.id.Value()),
		Title:  title,
		Status: c.status,
	}
	return tea.Batch(
		func() tea.Msg { return EpicCreatedMsg{Epic: e} },
		func() tea.Msg { return CloseOverlayMsg{} },
	)
}

// Title returns the overlay title
func (c *CreateEpicOverlay) Title() string {
	return "Add Epic"
}

// Size returns the overlay dimensions
func (c *CreateEpicOverlay) Size() (width, height int) {
	return 64, 14
}
