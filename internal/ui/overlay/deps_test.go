package overlay

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// A ← B ← C, D standalone
func depsSnapshot() []domain.Epic {
	return []domain.Epic{
		{ID: "A", Status: domain.StatusCompleted},
		{ID: "B", Status: domain.StatusActive, DependsOn: []string{"A"}},
		{ID: "C", Status: domain.StatusPlanning, DependsOn: []string{"B"}},
		{ID: "D", Status: domain.StatusPlanning},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, d *DepsEditor, keys ...string) (*DepsEditor, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = d.Update(key(k))
		d = model.(*DepsEditor)
	}
	return d, cmd
}

func TestNewDepsEditor(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[2], epics)

	require.Len(t, d.candidates, 3, "the edited epic is not a candidate")
	assert.Equal(t, []string{"B"}, d.DependsOn())
	assert.False(t, d.Preview().Cyclic)
	assert.Equal(t, 3, d.Preview().Phase)
	assert.Equal(t, "Dependencies · C", d.Title())
}

func TestDepsEditor_TogglePreviewsPhase(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[2], epics)

	// Candidates are A, B, D: uncheck B
	d, _ = press(t, d, "j", " ")
	assert.Empty(t, d.DependsOn())
	assert.Equal(t, 1, d.Preview().Phase)

	// Check A
	d, _ = press(t, d, "k", " ")
	assert.Equal(t, []string{"A"}, d.DependsOn())
	assert.Equal(t, 2, d.Preview().Phase)

	assert.Contains(t, ansi.Strip(d.View()), "would be in phase 2")
}

func TestDepsEditor_CycleBlocksApply(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[0], epics)

	// Candidates are B, C, D: make A depend on C
	d, _ = press(t, d, "j", " ")
	require.True(t, d.Preview().Cyclic)
	assert.Equal(t, []string{"A", "C", "B", "A"}, d.Preview().Path)

	view := ansi.Strip(d.View())
	assert.Contains(t, view, "⟳ cycle: A → C → B → A")
	assert.Contains(t, view, "cannot be applied")

	_, cmd := press(t, d, "enter")
	assert.Nil(t, cmd, "a cyclic selection must not be applied")
}

func TestDepsEditor_Apply(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[3], epics)

	d, cmd := press(t, d, " ", "enter")
	require.NotNil(t, cmd)

	msg, ok := cmd().(SelectionMsg)
	require.True(t, ok)
	assert.Equal(t, "deps", msg.Key)
	assert.Equal(t, DepsResult{ID: "D", DependsOn: []string{"A"}}, msg.Value)
	assert.Equal(t, 2, d.Preview().Phase)
}

func TestDepsEditor_KeepsMissingDependencies(t *testing.T) {
	epics := depsSnapshot()
	epics[3].DependsOn = []string{"gone"}
	d := NewDepsEditor(epics[3], epics)

	d, _ = press(t, d, " ")
	assert.Equal(t, []string{"gone", "A"}, d.DependsOn())
}

func TestDepsEditor_CursorBounds(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[0], epics)

	d, _ = press(t, d, "k")
	assert.Equal(t, 0, d.cursor)

	d, _ = press(t, d, "G")
	assert.Equal(t, 2, d.cursor)

	d, _ = press(t, d, "j")
	assert.Equal(t, 2, d.cursor)
}

func TestDepsEditor_Scrolls(t *testing.T) {
	var epics []domain.Epic
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		epics = append(epics, domain.Epic{ID: id, Status: domain.StatusPlanning})
	}
	d := NewDepsEditor(domain.Epic{ID: "new", Status: domain.StatusPlanning}, epics)
	d.viewHeight = 2

	d, _ = press(t, d, "j", "j", "j")
	assert.Equal(t, 3, d.cursor)
	assert.Equal(t, 2, d.offset)

	view := ansi.Strip(d.View())
	assert.Contains(t, view, "▶ [ ] P d")
	assert.NotContains(t, view, " a ·")
}

func TestDepsEditor_EscapeCloses(t *testing.T) {
	epics := depsSnapshot()
	d := NewDepsEditor(epics[1], epics)

	_, cmd := press(t, d, "esc")
	require.NotNil(t, cmd)
	_, ok := cmd().(CloseOverlayMsg)
	assert.True(t, ok)
}
