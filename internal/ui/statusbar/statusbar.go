// Package statusbar renders the one-line bar at the bottom of the board:
// the input mode, the key hints for that mode and a summary on the right.
package statusbar

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/riordanpawley/epicboard/internal/types"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

type StatusBar struct {
	mode   types.Mode
	width  int
	styles *styles.Styles
	info   string
}

func New(mode types.Mode, width int, s *styles.Styles) StatusBar {
	return StatusBar{mode: mode, width: width, styles: s}
}

// WithInfo returns a copy of the bar showing info right aligned
func (sb StatusBar) WithInfo(info string) StatusBar {
	sb.info = info
	return sb
}

// Render draws the bar exactly width cells wide. Hints are cut short
// before the mode or the info would be.
func (sb StatusBar) Render() string {
	inner := sb.width - sb.styles.StatusBar.GetHorizontalFrameSize()
	mode := sb.styles.StatusMode.Render(" " + sb.mode.String() + " ")

	var info string
	if sb.info != "" {
		info = sb.styles.StatusInfo.Render(sb.info)
	}

	left := mode
	if hints := GetHints(sb.mode); hints != "" {
		sep := " │ "
		room := inner - lipgloss.Width(mode) - lipgloss.Width(sep) - lipgloss.Width(info) - 1
		if room > 3 {
			left += sb.styles.StatusHint.Render(sep + ansi.Truncate(hints, room, "…"))
		}
	}

	if info != "" {
		if gap := inner - lipgloss.Width(left) - lipgloss.Width(info); gap >= 0 {
			left = lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), info)
		}
	}
	return sb.styles.StatusBar.Width(sb.width).MaxWidth(sb.width).Render(left)
}
