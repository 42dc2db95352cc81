package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riordanpawley/epicboard/internal/config"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/logging"
	"github.com/riordanpawley/epicboard/internal/services/planner"
	"github.com/riordanpawley/epicboard/internal/store"
)

// newTestDeps opens a fresh SQLite store seeded with epics
func newTestDeps(t *testing.T, epics ...domain.Epic) (*Dependencies, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "epics.db")

	out := &bytes.Buffer{}
	deps, err := NewDependencies(cfg, logging.Discard(), out, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	for _, e := range epics {
		_, err := deps.Store.Create(context.Background(), e)
		require.NoError(t, err)
	}
	return deps, out
}

// newFileDeps serves a snapshot file
func newFileDeps(t *testing.T, epics ...domain.Epic) (*Dependencies, *bytes.Buffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "epics.yaml")
	require.NoError(t, store.WriteSnapshot(path, epics))

	out := &bytes.Buffer{}
	deps, err := NewDependencies(config.DefaultConfig(), logging.Discard(), out, path)
	require.NoError(t, err)
	return deps, out, path
}

func chain() []domain.Epic {
	return []domain.Epic{
		{ID: "A", Title: "Schema", Status: domain.StatusCompleted},
		{ID: "B", Title: "API", Status: domain.StatusActive, DependsOn: []string{"A"}},
		{ID: "C", Title: "Checkout", Status: domain.StatusPlanning, DependsOn: []string{"B"}},
	}
}

func cyclic() []domain.Epic {
	return []domain.Epic{
		{ID: "A", Status: domain.StatusPlanning},
		{ID: "X", Status: domain.StatusPlanning, DependsOn: []string{"Y"}},
		{ID: "Y", Status: domain.StatusPlanning, DependsOn: []string{"X"}},
	}
}

func TestPhasesCommand(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)

	require.NoError(t, PhasesCommand(context.Background(), deps, false))

	got := out.String()
	assert.Contains(t, got, "● Phase 1 · completed · 1/1")
	assert.Contains(t, got, "◐ Phase 2 · in_progress · 0/1")
	assert.Contains(t, got, "■ Phase 3 · blocked · 0/1")
	assert.Contains(t, got, "Checkout")
	assert.NotContains(t, got, "Unresolved")
}

func TestPhasesCommand_JSON(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)
	deps.JSON = true

	require.NoError(t, PhasesCommand(context.Background(), deps, false))

	var view struct {
		Phases []struct {
			Number int    `json:"phaseNumber"`
			Epics  []any  `json:"entities"`
			Status string `json:"status"`
		} `json:"phases"`
		Unresolved   []any    `json:"unresolved"`
		CycleMembers []string `json:"cycleMembers"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	require.Len(t, view.Phases, 3)
	assert.Equal(t, "blocked", view.Phases[2].Status)
	assert.Empty(t, view.Unresolved)
}

func TestPhasesCommand_Cycle(t *testing.T) {
	deps, out, _ := newFileDeps(t, cyclic()...)

	err := PhasesCommand(context.Background(), deps, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Equal(t, 2, ExitCode(err))
	assert.Empty(t, out.String())

	require.NoError(t, PhasesCommand(context.Background(), deps, true))
	assert.Contains(t, out.String(), "○ Phase 1")
	assert.Contains(t, out.String(), "⟳ Unresolved · cycle through X, Y")
}

func TestPhasesCommand_Empty(t *testing.T) {
	deps, out := newTestDeps(t)
	require.NoError(t, PhasesCommand(context.Background(), deps, false))
	assert.Equal(t, "No epics\n", out.String())
}

func TestPhaseCommand(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)

	require.NoError(t, PhaseCommand(context.Background(), deps, "C"))
	assert.Equal(t, "C: phase 3\n", out.String())

	err := PhaseCommand(context.Background(), deps, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, ExitCode(err))
}

func TestCycleCheckCommand(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)
	ctx := context.Background()

	require.NoError(t, CycleCheckCommand(ctx, deps, "C", []string{"A"}))
	assert.Equal(t, "✓ no cycle\n", out.String())

	err := CycleCheckCommand(ctx, deps, "A", []string{"C"})
	var cycleErr *domain.CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"A", "C", "B", "A"}, cycleErr.Path)
}

func TestPreviewCommand(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)
	ctx := context.Background()

	require.NoError(t, PreviewCommand(ctx, deps, "new", []string{"B"}))
	assert.Equal(t, "new would be in phase 3\n", out.String())

	out.Reset()
	deps.JSON = true
	err := PreviewCommand(ctx, deps, "A", []string{"C"})
	assert.ErrorIs(t, err, domain.ErrCycle)

	var preview planner.PreviewResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &preview))
	assert.True(t, preview.Cyclic)
}

func TestEpicCommands(t *testing.T) {
	deps, out := newTestDeps(t, chain()...)
	ctx := context.Background()

	require.NoError(t, EpicAddCommand(ctx, deps, domain.Epic{ID: "D", Title: "Docs", DependsOn: []string{"C"}}))
	assert.Contains(t, out.String(), "✓ Created D")

	out.Reset()
	require.NoError(t, EpicListCommand(ctx, deps))
	assert.Contains(t, out.String(), "PHASE")
	assert.Regexp(t, `D\s+4\s+planning\s+C\s+Docs`, out.String())

	out.Reset()
	require.NoError(t, EpicStatusCommand(ctx, deps, "C", "next"))
	assert.Equal(t, "✓ C is now active\n", out.String())

	out.Reset()
	require.NoError(t, EpicStatusCommand(ctx, deps, "C", "in-progress"))
	assert.Equal(t, "✓ C is now in_progress\n", out.String())

	assert.ErrorIs(t, EpicStatusCommand(ctx, deps, "C", "paused"), domain.ErrInvalid)

	out.Reset()
	require.NoError(t, EpicDepsCommand(ctx, deps, "D", []string{"A"}))
	assert.Equal(t, "✓ D depends on [A] · phase 2\n", out.String())

	err := EpicDepsCommand(ctx, deps, "A", []string{"D"})
	assert.ErrorIs(t, err, domain.ErrCycle)

	out.Reset()
	require.NoError(t, EpicRemoveCommand(ctx, deps, "A"))
	assert.Equal(t, "✓ Removed A\n", out.String())

	// B keeps its reference to A, which is now missing and ignored
	out.Reset()
	require.NoError(t, PhaseCommand(ctx, deps, "B"))
	assert.Equal(t, "B: phase 1\n", out.String())
}

func TestEpicCommands_FileSource(t *testing.T) {
	deps, out, path := newFileDeps(t, chain()...)
	ctx := context.Background()

	require.NoError(t, EpicDepsCommand(ctx, deps, "C", []string{"A"}))
	assert.Equal(t, "✓ C depends on [A] · phase 2\n", out.String())

	saved, err := store.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, saved[2].DependsOn)

	out.Reset()
	require.NoError(t, EpicAddCommand(ctx, deps, domain.Epic{ID: "D", Title: "Docs", DependsOn: []string{"C"}}))
	assert.Equal(t, "✓ Created D\n", out.String())
	saved, err = store.LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, saved, 4)
	assert.Equal(t, domain.StatusPlanning, saved[3].Status)

	err = EpicRemoveCommand(ctx, deps, "A")
	assert.ErrorContains(t, err, "cannot run with --file")
}

func TestImportExport(t *testing.T) {
	_, _, path := newFileDeps(t, chain()...)

	deps, out := newTestDeps(t)
	ctx := context.Background()

	require.NoError(t, ImportCommand(ctx, deps, path, false, false, false))
	assert.Equal(t, "✓ Imported 3 epics (3 created, 0 updated)\n", out.String())

	out.Reset()
	require.NoError(t, ImportCommand(ctx, deps, path, false, false, false))
	assert.Equal(t, "✓ Imported 3 epics (0 created, 3 updated)\n", out.String())

	assert.ErrorIs(t, ImportCommand(ctx, deps, "", false, false, false), domain.ErrInvalid)

	exported := filepath.Join(t.TempDir(), "out.json")
	out.Reset()
	require.NoError(t, ExportCommand(ctx, deps, exported))
	assert.Equal(t, fmt.Sprintf("✓ Exported 3 epics to %s\n", exported), out.String())

	epics, err := store.LoadSnapshot(exported)
	require.NoError(t, err)
	require.Len(t, epics, 3)
	assert.Equal(t, []string{"B"}, epics[2].DependsOn)

	out.Reset()
	require.NoError(t, ExportCommand(ctx, deps, "-"))
	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Len(t, snap.Epics, 3)
	assert.Equal(t, store.SnapshotVersion, snap.Version)
}

func TestImportRefusesCycles(t *testing.T) {
	_, _, path := newFileDeps(t, cyclic()...)
	deps, _ := newTestDeps(t)

	err := ImportCommand(context.Background(), deps, path, false, false, false)
	assert.ErrorIs(t, err, domain.ErrCycle)

	epics, err := deps.Store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, epics)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"cycle", &domain.CycleError{Path: []string{"A", "B", "A"}}, 2},
		{"wrapped cycle", &domain.StoreError{Op: "deps", Err: &domain.CycleError{}}, 2},
		{"not found", domain.ErrNotFound, 1},
		{"other", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
