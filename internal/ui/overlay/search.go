package overlay

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// SearchMsg asks the board to put the cursor on a matching epic. It is sent
// on every edit of the query and whenever the user steps between matches.
type SearchMsg struct {
	Query string
	// Match is the index of the match to select. The board wraps it
	// around the number of matches it finds.
	Match int
	// Cancelled is set when the search was abandoned with Esc
	Cancelled bool
}

// SearchOverlay is the one-line "/" prompt for finding an epic by id or title
type SearchOverlay struct {
	input   textinput.Model
	match   int
	matches int
}

var (
	searchBarStyle = lipgloss.NewStyle().
			Foreground(styles.Text).
			Background(styles.Surface0)
	searchCountStyle = lipgloss.NewStyle().
				Foreground(styles.Overlay1).
				Background(styles.Surface0)
	searchMissStyle = lipgloss.NewStyle().
			Foreground(styles.Red).
			Background(styles.Surface0)
)

// NewSearchOverlay creates an empty, focused search prompt
func NewSearchOverlay() *SearchOverlay {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "epic id or title (tab for next match)"
	in.CharLimit = 100
	in.Width = 50
	in.Focus()
	return &SearchOverlay{input: in}
}

// SetMatchCount records how many epics the board found for the query
func (s *SearchOverlay) SetMatchCount(count int) {
	s.matches = count
	if count > 0 {
		s.match = ((s.match % count) + count) % count
	}
}

// Query returns the current search text
func (s *SearchOverlay) Query() string {
	return s.input.Value()
}

func (s *SearchOverlay) Init() tea.Cmd {
	return textinput.Blink
}

func (s *SearchOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return s, func() tea.Msg { return CloseOverlayMsg{} }
		case "esc":
			query := s.input.Value()
			s.input.SetValue("")
			return s, tea.Batch(
				func() tea.Msg { return SearchMsg{Query: query, Cancelled: true} },
				func() tea.Msg { return CloseOverlayMsg{} },
			)
		case "tab", "ctrl+n":
			return s, s.step(1)
		case "shift+tab", "ctrl+p":
			return s, s.step(-1)
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return s, cmd
	}

	// A new query starts again from its first match
	s.match = 0
	return s, tea.Batch(cmd, s.search())
}

// step moves to the next or previous match, wrapping at either end
func (s *SearchOverlay) step(delta int) tea.Cmd {
	if s.matches < 2 {
		return nil
	}
	s.match = ((s.match+delta)%s.matches + s.matches) % s.matches
	return s.search()
}

func (s *SearchOverlay) search() tea.Cmd {
	msg := SearchMsg{Query: s.input.Value(), Match: s.match}
	return func() tea.Msg { return msg }
}

func (s *SearchOverlay) View() string {
	line := s.input.View()
	switch {
	case s.input.Value() == "":
	case s.matches == 0:
		line += searchMissStyle.Render(" (no match)")
	default:
		line += searchCountStyle.Render(fmt.Sprintf(" (%d/%d)", s.match+1, s.matches))
	}
	return searchBarStyle.Render(line)
}

// Title is empty: the search prompt is drawn as a bar, not a modal
func (s *SearchOverlay) Title() string {
	return ""
}

// Size reports zero width, which places the prompt full width above the
// status bar
func (s *SearchOverlay) Size() (width, height int) {
	return 0, 1
}
