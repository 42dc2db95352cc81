package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/riordanpawley/epicboard/internal/config"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/services/beads"
	"github.com/riordanpawley/epicboard/internal/services/planner"
	"github.com/riordanpawley/epicboard/internal/store"
)

// Dependencies holds all the services needed for CLI commands
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
	// JSON switches command output to machine-readable JSON
	JSON bool

	// Store is the SQLite store; nil when serving a snapshot file
	Store *store.Store
	// Source is what phases are computed from: Store or a FileStore
	Source planner.Source

	BeadsClient *beads.Client
}

// NewDependencies opens the configured store, or the snapshot file at
// file when it is non-empty
func NewDependencies(cfg *config.Config, logger *slog.Logger, out io.Writer, file string) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Out:         out,
		BeadsClient: beads.NewClient(&beads.ExecRunner{}, logger, cfg.Beads.Command),
	}

	if file != "" {
		deps.Source = store.NewFileStore(file, logger)
		return deps, nil
	}

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, err
	}
	deps.Store = st
	deps.Source = st
	return deps, nil
}

// Close releases the store
func (d *Dependencies) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

// Planner returns a planner over the active source
func (d *Dependencies) Planner() *planner.Planner {
	return planner.New(d.Source, d.Logger)
}

// requireStore fails for commands that cannot run against a snapshot file
func (d *Dependencies) requireStore(command string) (*store.Store, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("%s needs the database store and cannot run with --file", command)
	}
	return d.Store, nil
}

func (d *Dependencies) printJSON(v any) error {
	enc := json.NewEncoder(d.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ─── Phase queries ───────────────────────────────────────────────────────────

// PhasesCommand prints every epic grouped by phase. A snapshot containing a
// cycle is an error unless allowCycles is set, in which case the epics that
// could not be placed are listed separately.
func PhasesCommand(ctx context.Context, deps *Dependencies, allowCycles bool) error {
	view, err := deps.Planner().View(ctx)
	if err != nil {
		return err
	}

	if view.HasCycles() && !allowCycles {
		// Report the concrete cycle rather than the member list
		if _, err := deps.Planner().Groups(ctx); err != nil {
			return err
		}
		return domain.ErrCycle
	}

	if deps.JSON {
		return deps.printJSON(view)
	}
	printView(deps.Out, view)
	return nil
}

func printView(out io.Writer, view planner.View) {
	if len(view.Epics) == 0 {
		fmt.Fprintln(out, "No epics")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, g := range view.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s Phase %d · %s · %d/%d\n", g.Status.Icon(), g.Number, g.Status, g.CompletedCount, g.TotalCount)
		for _, e := range g.Epics {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.ID, e.Status, truncate(e.DisplayTitle(), 60))
		}
	}
	if view.HasCycles() {
		fmt.Fprintf(w, "\n⟳ Unresolved · cycle through %s\n", strings.Join(view.CycleMembers, ", "))
		for _, e := range view.Unresolved {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.ID, e.Status, truncate(e.DisplayTitle(), 60))
		}
	}
	w.Flush()
}

// PhaseCommand prints the phase of one epic
func PhaseCommand(ctx context.Context, deps *Dependencies, id string) error {
	phase, err := deps.Planner().PhaseOf(ctx, id)
	if err != nil {
		return err
	}
	if deps.JSON {
		return deps.printJSON(map[string]any{"id": id, "phase": phase})
	}
	fmt.Fprintf(deps.Out, "%s: phase %d\n", id, phase)
	return nil
}

// CycleCheckCommand reports whether id depending on candidates would close
// a cycle. A cycle is returned as a *domain.CycleError after printing.
func CycleCheckCommand(ctx context.Context, deps *Dependencies, id string, candidates []string) error {
	check, err := deps.Planner().CheckCycle(ctx, id, candidates)
	if err != nil {
		return err
	}
	if deps.JSON {
		if err := deps.printJSON(check); err != nil {
			return err
		}
	} else if !check.Cyclic {
		fmt.Fprintf(deps.Out, "✓ no cycle\n")
	}
	if check.Cyclic {
		return &domain.CycleError{Path: check.Path}
	}
	return nil
}

// PreviewCommand prints the phase id would get with candidates
func PreviewCommand(ctx context.Context, deps *Dependencies, id string, candidates []string) error {
	preview, err := deps.Planner().Preview(ctx, id, candidates)
	if err != nil {
		return err
	}
	if deps.JSON {
		if err := deps.printJSON(preview); err != nil {
			return err
		}
	} else if !preview.Cyclic {
		fmt.Fprintf(deps.Out, "%s would be in phase %d\n", id, preview.Phase)
	}
	if preview.Cyclic {
		return &domain.CycleError{Path: preview.Path}
	}
	return nil
}

// ─── Epic editing ────────────────────────────────────────────────────────────

// EpicAddCommand creates an epic
func EpicAddCommand(ctx context.Context, deps *Dependencies, e domain.Epic) error {
	created, err := deps.Planner().Create(ctx, e)
	if err != nil {
		return err
	}
	if deps.JSON {
		return deps.printJSON(created)
	}
	fmt.Fprintf(deps.Out, "✓ Created %s\n", created.ID)
	return nil
}

// EpicListCommand lists epics in creation order with their phase
func EpicListCommand(ctx context.Context, deps *Dependencies) error {
	view, err := deps.Planner().View(ctx)
	if err != nil {
		return err
	}
	if deps.JSON {
		return deps.printJSON(view.Epics)
	}
	if len(view.Epics) == 0 {
		fmt.Fprintln(deps.Out, "No epics")
		return nil
	}

	w := tabwriter.NewWriter(deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPHASE\tSTATUS\tDEPENDS ON\tTITLE")
	fmt.Fprintln(w, "--\t-----\t------\t----------\t-----")
	for _, e := range view.Epics {
		phase := "⟳"
		if p, ok := view.Phase[e.ID]; ok {
			phase = fmt.Sprint(p)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, phase, e.Status, strings.Join(e.DependsOn, ","), truncate(e.DisplayTitle(), 60))
	}
	return w.Flush()
}

// EpicStatusCommand sets an epic's status. "next" advances it along the
// planning → active → completed cycle.
func EpicStatusCommand(ctx context.Context, deps *Dependencies, id, value string) error {
	var status domain.Status
	if value == "next" {
		next, err := deps.Planner().CycleStatus(ctx, id)
		if err != nil {
			return err
		}
		status = next
	} else {
		parsed, err := domain.ParseStatus(value)
		if err != nil {
			return err
		}
		if err := deps.Source.UpdateStatus(ctx, id, parsed); err != nil {
			return err
		}
		status = parsed
	}

	if deps.JSON {
		return deps.printJSON(map[string]any{"id": id, "status": status})
	}
	fmt.Fprintf(deps.Out, "✓ %s is now %s\n", id, status)
	return nil
}

// EpicDepsCommand replaces an epic's dependency list
func EpicDepsCommand(ctx context.Context, deps *Dependencies, id string, dependsOn []string) error {
	p := deps.Planner()
	updated, err := p.SetDependsOn(ctx, id, dependsOn)
	if err != nil {
		return err
	}
	if deps.JSON {
		return deps.printJSON(updated)
	}

	phase, err := p.PhaseOf(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Out, "✓ %s depends on [%s] · phase %d\n", id, strings.Join(updated.DependsOn, ", "), phase)
	return nil
}

// EpicRemoveCommand deletes an epic. Epics depending on it keep the
// reference as a missing dependency.
func EpicRemoveCommand(ctx context.Context, deps *Dependencies, id string) error {
	st, err := deps.requireStore("epic rm")
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	if !deps.JSON {
		fmt.Fprintf(deps.Out, "✓ Removed %s\n", id)
	}
	return nil
}

// ─── Import / export ─────────────────────────────────────────────────────────

// ImportCommand loads epics from a snapshot file, or from beads when
// fromBeads is set, into the store
func ImportCommand(ctx context.Context, deps *Dependencies, path string, fromBeads, allTypes, replace bool) error {
	st, err := deps.requireStore("import")
	if err != nil {
		return err
	}

	var epics []domain.Epic
	switch {
	case fromBeads:
		epics, err = deps.BeadsClient.Epics(ctx, allTypes)
	case path != "":
		epics, err = store.LoadSnapshot(path)
	default:
		return fmt.Errorf("%w: give a snapshot file or --from-beads", domain.ErrInvalid)
	}
	if err != nil {
		return err
	}

	result, err := st.Import(ctx, epics, replace)
	if err != nil {
		return err
	}
	deps.Logger.Info("imported epics", "created", result.Created, "updated", result.Updated)

	if deps.JSON {
		return deps.printJSON(result)
	}
	fmt.Fprintf(deps.Out, "✓ Imported %d epics (%d created, %d updated)\n", result.Created+result.Updated, result.Created, result.Updated)
	return nil
}

// ExportCommand writes every epic to a snapshot file, or to Out as JSON
// when path is empty or "-"
func ExportCommand(ctx context.Context, deps *Dependencies, path string) error {
	epics, err := deps.Source.List(ctx)
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		return deps.printJSON(store.NewSnapshot(epics))
	}
	if err := store.WriteSnapshot(path, epics); err != nil {
		return err
	}
	if !deps.JSON {
		fmt.Fprintf(deps.Out, "✓ Exported %d epics to %s\n", len(epics), path)
	}
	return nil
}

// ExitCode maps a command error to a process exit code: 2 for a dependency
// cycle, 1 for anything else
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrCycle):
		return 2
	default:
		return 1
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
