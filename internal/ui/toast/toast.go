// Package toast renders the transient notifications in the corner of the
// board.
package toast

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/epicboard/internal/types"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// MaxVisible is how many toasts are drawn at once. Older ones are
// summarised as "+N more".
const MaxVisible = 3

const (
	minWidth = 20
	maxWidth = 48
)

// ToastRenderer draws a stack of toasts
type ToastRenderer struct {
	styles *styles.Styles
}

func New(s *styles.Styles) *ToastRenderer {
	return &ToastRenderer{styles: s}
}

// Render stacks the newest toasts, right aligned, in at most a third of
// width. It returns "" when there is nothing to show.
func (r *ToastRenderer) Render(toasts []types.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	w := max(minWidth, min(maxWidth, width/3))
	hidden := max(0, len(toasts)-MaxVisible)

	var lines []string
	if hidden > 0 {
		lines = append(lines, r.styles.StatusHint.Render(fmt.Sprintf("+%d more", hidden)))
	}
	for _, t := range toasts[hidden:] {
		style := r.styleFor(t.Level).Width(w)
		lines = append(lines, style.Render(Icon(t.Level)+" "+t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

// Icon is the marker drawn before a toast's message
func Icon(level types.ToastLevel) string {
	switch level {
	case types.ToastSuccess:
		return "✓"
	case types.ToastWarning:
		return "⚠"
	case types.ToastError:
		return "✗"
	default:
		return "•"
	}
}

func (r *ToastRenderer) styleFor(level types.ToastLevel) lipgloss.Style {
	switch level {
	case types.ToastSuccess:
		return r.styles.ToastSuccess
	case types.ToastWarning:
		return r.styles.ToastWarning
	case types.ToastError:
		return r.styles.ToastError
	default:
		return r.styles.ToastInfo
	}
}
