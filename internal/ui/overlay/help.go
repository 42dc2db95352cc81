package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// KeyBinding represents a single keybinding entry
type KeyBinding struct {
	Key         string
	Description string
}

// KeyCategory represents a category of keybindings
type KeyCategory struct {
	Name     string
	Bindings []KeyBinding
}

// keyColumnWidth aligns descriptions; the widest key is "Ctrl+d/u"
const keyColumnWidth = 9

// helpCategories lists the board's keys, then a legend for the card markers
var helpCategories = []KeyCategory{
	{
		Name: "Navigation",
		Bindings: []KeyBinding{
			{Key: "h/l", Description: "Move between phases"},
			{Key: "j/k", Description: "Move up/down (through every epic in the list)"},
			{Key: "Ctrl+d/u", Description: "Half page down/up"},
			{Key: "gg/ge", Description: "Jump to top/bottom"},
			{Key: "gh/gl", Description: "Jump to first/last phase"},
			{Key: "gc", Description: "Jump to the cycle column"},
			{Key: "/", Description: "Find an epic by id or title"},
		},
	},
	{
		Name: "Epics",
		Bindings: []KeyBinding{
			{Key: "Enter", Description: "Show epic details"},
			{Key: "a", Description: "Add an epic"},
			{Key: "s", Description: "Advance status (planning → active → completed)"},
			{Key: "d", Description: "Edit dependencies with phase preview"},
			{Key: "x", Description: "Clear dependencies"},
		},
	},
	{
		Name: "Board",
		Bindings: []KeyBinding{
			{Key: "H", Description: "Hide/show completed phases"},
			{Key: "f", Description: "Filter epics by status"},
			{Key: "v", Description: "Switch between board and list"},
			{Key: "r", Description: "Reload epics"},
			{Key: "?", Description: "Help (this screen)"},
			{Key: "Ctrl+L", Description: "Refresh screen"},
			{Key: "q", Description: "Quit"},
		},
	},
	{
		Name: "Legend",
		Bindings: []KeyBinding{
			{Key: "P3", Description: "Phase of the epic"},
			{Key: "⟳", Description: "Epic lies on a dependency cycle"},
			{Key: "?", Description: "Epic depends on a cycle and has no phase"},
			{Key: "P/A/C", Description: "Planning, active, completed"},
		},
	},
}

// HelpOverlay displays keybinding reference
type HelpOverlay struct {
	styles     *Styles
	scroll     int
	maxScroll  int
	viewHeight int
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{
		styles:     newStyles(),
		viewHeight: 20,
	}
}

// Init initializes the overlay
func (h *HelpOverlay) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (h *HelpOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}

	switch keyMsg.String() {
	case "esc", "q", "?":
		return h, func() tea.Msg { return CloseOverlayMsg{} }
	case "j", "down":
		h.scroll = min(h.scroll+1, h.maxScroll)
	case "k", "up":
		h.scroll = max(h.scroll-1, 0)
	case "g":
		h.scroll = 0
	case "G":
		h.scroll = h.maxScroll
	}
	return h, nil
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	categoryStyle := lipgloss.NewStyle().
		Foreground(styles.Blue).
		Bold(true)
	keyStyle := h.styles.Key.Width(keyColumnWidth)

	var lines []string
	for i, cat := range helpCategories {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, categoryStyle.Render(cat.Name+":"))
		for _, binding := range cat.Bindings {
			lines = append(lines, "  "+keyStyle.Render(binding.Key)+h.styles.Item.Render(binding.Description))
		}
	}

	h.maxScroll = max(0, len(lines)-h.viewHeight)
	h.scroll = min(h.scroll, h.maxScroll)

	end := min(h.scroll+h.viewHeight, len(lines))
	result := strings.Join(lines[h.scroll:end], "\n")

	if h.maxScroll > 0 {
		result += "\n\n" + h.styles.Hint.Render("[j/k to scroll, g/G to jump]")
	}

	return result
}

// Title returns the overlay title
func (h *HelpOverlay) Title() string {
	return "Help"
}

// Size returns the overlay dimensions
func (h *HelpOverlay) Size() (width, height int) {
	h.viewHeight = 20
	return 64, 24
}
