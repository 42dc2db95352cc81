// Package planner turns a set of epics into the phase view shared by the
// CLI, the HTTP API, the MCP tools and the terminal board.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riordanpawley/epicboard/internal/core/phases"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/metrics"
)

// Source is where epics are read from and dependency edits are written to
type Source interface {
	List(ctx context.Context) ([]domain.Epic, error)
	Get(ctx context.Context, id string) (domain.Epic, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	SetDependsOn(ctx context.Context, id string, deps []string) (domain.Epic, error)
}

// Creator is implemented by sources that can add epics
type Creator interface {
	Create(ctx context.Context, e domain.Epic) (domain.Epic, error)
}

// View is the phase layout of one snapshot
type View struct {
	Epics  []domain.Epic       `json:"-"`
	Groups []domain.PhaseGroup `json:"phases"`
	// Unresolved holds epics on or behind a cycle, in input order
	Unresolved []domain.Epic `json:"unresolved"`
	// CycleMembers lists ids that lie on a cycle, sorted
	CycleMembers []string `json:"cycleMembers"`
	// Phase maps every resolved epic to its phase
	Phase map[string]int `json:"-"`

	onCycle map[string]bool
}

// HasCycles reports whether some epics could not be placed in a phase
func (v View) HasCycles() bool {
	return len(v.Unresolved) > 0
}

// InCycle reports whether id lies on a cycle
func (v View) InCycle(id string) bool {
	return v.onCycle[id]
}

// Index maps epic ids to epics
func (v View) Index() map[string]domain.Epic {
	idx := make(map[string]domain.Epic, len(v.Epics))
	for _, e := range v.Epics {
		idx[e.ID] = e
	}
	return idx
}

// Compute builds the view for a snapshot. It never fails: cyclic epics end
// up in Unresolved instead of aborting the whole layout.
func Compute(epics []domain.Epic) View {
	start := time.Now()

	result := phases.Analyze(epics)
	byPhase, unresolved := result.Bucket(epics)

	view := View{
		Epics:        epics,
		Groups:       phases.BuildGroups(byPhase),
		Unresolved:   unresolved,
		CycleMembers: []string{},
		Phase:        make(map[string]int, len(result.Phases)),
	}
	if view.Unresolved == nil {
		view.Unresolved = []domain.Epic{}
	}
	for id, info := range result.Phases {
		view.Phase[id] = info.Phase
	}

	var cycleErr error
	if result.HasCycles() {
		members := phases.CycleMembers(phases.GraphOf(epics))
		if len(members) > 0 {
			view.CycleMembers = members
			view.onCycle = make(map[string]bool, len(members))
			for _, id := range members {
				view.onCycle[id] = true
			}
		}
		cycleErr = domain.ErrCycle
	}

	metrics.ObserveComputation(start, len(epics), cycleErr)
	return view
}

// CycleCheck is the outcome of checking a proposed dependency list
type CycleCheck struct {
	Cyclic bool     `json:"cyclic"`
	Path   []string `json:"path,omitempty"`
}

// PreviewResult is the phase an epic would get with a proposed dependency list
type PreviewResult struct {
	ID     string   `json:"id"`
	Phase  int      `json:"phase,omitempty"`
	Cyclic bool     `json:"cyclic"`
	Path   []string `json:"path,omitempty"`
}

// Planner computes phase views over a Source
type Planner struct {
	source Source
	logger *slog.Logger
}

// New creates a Planner reading from source
func New(source Source, logger *slog.Logger) *Planner {
	return &Planner{source: source, logger: logger}
}

// Source returns the underlying epic source
func (p *Planner) Source() Source {
	return p.source
}

// View loads the current snapshot and lays it out in phases
func (p *Planner) View(ctx context.Context) (View, error) {
	epics, err := p.source.List(ctx)
	if err != nil {
		return View{}, err
	}
	view := Compute(epics)
	p.logger.Debug("computed phases", "epics", len(epics), "phases", len(view.Groups), "unresolved", len(view.Unresolved))
	return view, nil
}

// Groups returns the phase groups, failing with a *domain.CycleError when
// the snapshot contains a cycle
func (p *Planner) Groups(ctx context.Context) ([]domain.PhaseGroup, error) {
	epics, err := p.source.List(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	groups, err := phases.Groups(epics)
	metrics.ObserveComputation(start, len(epics), err)
	return groups, err
}

// PhaseOf returns the phase of a stored epic
func (p *Planner) PhaseOf(ctx context.Context, id string) (int, error) {
	if _, err := p.source.Get(ctx, id); err != nil {
		return 0, err
	}
	epics, err := p.source.List(ctx)
	if err != nil {
		return 0, err
	}
	return phases.PhaseOf(id, phases.GraphOf(epics), nil)
}

// CheckCycle reports whether giving id the dependency list deps would
// close a cycle. id does not need to exist yet.
func (p *Planner) CheckCycle(ctx context.Context, id string, deps []string) (CycleCheck, error) {
	epics, err := p.source.List(ctx)
	if err != nil {
		return CycleCheck{}, err
	}
	deps = domain.NormalizeDeps(deps)

	path := phases.CyclePath(deps, id, phases.GraphOf(epics))
	if path == nil {
		return CycleCheck{}, nil
	}
	return CycleCheck{Cyclic: true, Path: path}, nil
}

// Preview returns the phase id would get with deps, without writing anything
func (p *Planner) Preview(ctx context.Context, id string, deps []string) (PreviewResult, error) {
	epics, err := p.source.List(ctx)
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewIn(epics, id, deps), nil
}

// PreviewIn is Preview over an in-memory snapshot
func PreviewIn(epics []domain.Epic, id string, deps []string) PreviewResult {
	deps = domain.NormalizeDeps(deps)

	phase, err := phases.Preview(id, deps, phases.GraphOf(epics))
	if err != nil {
		metrics.RecordCycleRejection("preview")
		result := PreviewResult{ID: id, Cyclic: true}
		var cycleErr *domain.CycleError
		if errors.As(err, &cycleErr) {
			result.Path = cycleErr.Path
		}
		return result
	}
	return PreviewResult{ID: id, Phase: phase}
}

// SetDependsOn writes a dependency list through the source's cycle guard
func (p *Planner) SetDependsOn(ctx context.Context, id string, deps []string) (domain.Epic, error) {
	return p.source.SetDependsOn(ctx, id, domain.NormalizeDeps(deps))
}

// Create adds an epic through the source. Sources that cannot add epics
// return ErrInvalid.
func (p *Planner) Create(ctx context.Context, e domain.Epic) (domain.Epic, error) {
	creator, ok := p.source.(Creator)
	if !ok {
		return domain.Epic{}, fmt.Errorf("%w: this epic source cannot add epics", domain.ErrInvalid)
	}
	created, err := creator.Create(ctx, e)
	if err != nil {
		return domain.Epic{}, err
	}
	p.logger.Debug("epic created", "id", created.ID, "deps", len(created.DependsOn))
	return created, nil
}

// CycleStatus moves an epic to the next status in workflow order
func (p *Planner) CycleStatus(ctx context.Context, id string) (domain.Status, error) {
	e, err := p.source.Get(ctx, id)
	if err != nil {
		return "", err
	}
	next := NextStatus(e.Status)
	if err := p.source.UpdateStatus(ctx, id, next); err != nil {
		return "", err
	}
	return next, nil
}

// NextStatus returns the status after s: planning → active → completed → planning.
// in_progress counts as active.
func NextStatus(s domain.Status) domain.Status {
	switch {
	case s == domain.StatusPlanning:
		return domain.StatusActive
	case s.IsActive():
		return domain.StatusCompleted
	default:
		return domain.StatusPlanning
	}
}
