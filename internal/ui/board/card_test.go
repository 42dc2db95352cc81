package board

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/ui/styles"
)

// stripANSI removes ANSI escape codes from a string for testing
func stripANSI(s string) string {
	return ansi.Strip(s)
}

func TestRenderCard(t *testing.T) {
	s := styles.New()
	e := domain.Epic{ID: "ep-7", Title: "Payments", Status: domain.StatusActive, DependsOn: []string{"ep-1"}}

	tests := []struct {
		name     string
		info     CardInfo
		isCursor bool
		width    int
		contains []string
		excludes []string
	}{
		{
			name:     "phase badge",
			info:     CardInfo{Phase: 3},
			width:    30,
			contains: []string{"Payments", "P3", "A", "ep-7"},
			excludes: []string{"▶", "⟳", "after"},
		},
		{
			name:     "cursor marker",
			info:     CardInfo{Phase: 1},
			isCursor: true,
			width:    30,
			contains: []string{"▶Payments"},
		},
		{
			name:     "cycle marker",
			info:     CardInfo{InCycle: true},
			width:    30,
			contains: []string{"⟳"},
			excludes: []string{"P0"},
		},
		{
			name:     "behind a cycle",
			info:     CardInfo{},
			width:    30,
			contains: []string{"?"},
		},
		{
			name:     "waiting on dependencies",
			info:     CardInfo{Phase: 2, Waiting: []string{"Schema"}},
			width:    30,
			contains: []string{"after Schema"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderCard(e, tt.info, tt.isCursor, tt.width, s))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderCard() missing %q\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("RenderCard() should not contain %q\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestRenderCard_TruncatesTitle(t *testing.T) {
	s := styles.New()
	e := domain.Epic{ID: "ep-1", Title: "A very long epic title that cannot possibly fit", Status: domain.StatusPlanning}

	got := stripANSI(RenderCard(e, CardInfo{Phase: 1}, false, 20, s))

	if !strings.Contains(got, "…") {
		t.Errorf("long title should be truncated with an ellipsis:\n%s", got)
	}
	// The border is drawn outside the style width
	for _, line := range strings.Split(got, "\n") {
		if w := ansi.StringWidth(line); w > 22 {
			t.Errorf("line %q is %d cells wide, want at most 22", line, w)
		}
	}
}

func TestRenderCard_UntitledUsesID(t *testing.T) {
	s := styles.New()
	got := stripANSI(RenderCard(domain.Epic{ID: "ep-9", Status: domain.StatusPlanning}, CardInfo{Phase: 1}, true, 30, s))
	if !strings.Contains(got, "▶ep-9") {
		t.Errorf("untitled epic should show its id as title:\n%s", got)
	}
}
