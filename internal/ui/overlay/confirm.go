package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmResult represents the result of a confirmation dialog
type ConfirmResult struct {
	Confirmed bool
}

// ConfirmDialog asks a yes/no question. No is selected until the user
// moves to Yes.
type ConfirmDialog struct {
	title    string
	message  string
	details  []string
	styles   *Styles
	selected bool // true = Yes
}

// NewConfirmDialog creates a new confirmation dialog with the given title and message
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		title:   title,
		message: message,
		styles:  newStyles(),
	}
}

// WithDetails lists lines under the message, e.g. the epics an action touches
func (c *ConfirmDialog) WithDetails(lines ...string) *ConfirmDialog {
	c.details = lines
	return c
}

// Init initializes the dialog
func (c *ConfirmDialog) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (c *ConfirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		return c, c.answer(true)
	case "n", "N", "esc", "q":
		return c, c.answer(false)
	case "enter":
		return c, c.answer(c.selected)
	case "left", "h":
		c.selected = true
	case "right", "l":
		c.selected = false
	case "tab":
		c.selected = !c.selected
	}
	return c, nil
}

func (c *ConfirmDialog) answer(yes bool) tea.Cmd {
	key := "no"
	if yes {
		key = "yes"
	}
	return func() tea.Msg {
		return SelectionMsg{Key: key, Value: ConfirmResult{Confirmed: yes}}
	}
}

// View renders the dialog
func (c *ConfirmDialog) View() string {
	var b strings.Builder

	if c.message != "" {
		b.WriteString(c.styles.Item.Render(c.message))
		b.WriteString("\n")
	}
	for _, line := range c.details {
		b.WriteString(c.styles.Muted.Render("  • " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	yesStyle, noStyle := c.styles.Item, c.styles.Selected
	if c.selected {
		yesStyle, noStyle = c.styles.Selected, c.styles.Item
	}
	b.WriteString(yesStyle.Render("[Y] Yes") + "    " + noStyle.Render("[N] No"))
	b.WriteString("\n\n")
	b.WriteString(c.styles.Hint.Render("h/l: Choose • Enter: Confirm • Esc: Cancel"))

	return b.String()
}

// Title returns the dialog title
func (c *ConfirmDialog) Title() string {
	return c.title
}

// Size returns the dialog dimensions
func (c *ConfirmDialog) Size() (width, height int) {
	lines := len(c.details) + 5
	if c.message != "" {
		lines += strings.Count(c.message, "\n") + 1
	}
	return 60, lines
}
