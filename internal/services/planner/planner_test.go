package planner

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riordanpawley/epicboard/internal/core/phases"
	"github.com/riordanpawley/epicboard/internal/domain"
	"github.com/riordanpawley/epicboard/internal/logging"
)

// memSource is an in-memory Source for testing
type memSource struct {
	epics []domain.Epic
	err   error
}

func (m *memSource) List(ctx context.Context) ([]domain.Epic, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Epic, len(m.epics))
	copy(out, m.epics)
	return out, nil
}

func (m *memSource) Get(ctx context.Context, id string) (domain.Epic, error) {
	for _, e := range m.epics {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Epic{}, domain.ErrNotFound
}

func (m *memSource) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	for i := range m.epics {
		if m.epics[i].ID == id {
			m.epics[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memSource) SetDependsOn(ctx context.Context, id string, deps []string) (domain.Epic, error) {
	if path := phases.CyclePath(deps, id, phases.GraphOf(m.epics)); path != nil {
		return domain.Epic{}, &domain.CycleError{Path: path}
	}
	for i := range m.epics {
		if m.epics[i].ID == id {
			m.epics[i].DependsOn = deps
			return m.epics[i], nil
		}
	}
	return domain.Epic{}, domain.ErrNotFound
}

func epic(id string, status domain.Status, deps ...string) domain.Epic {
	return domain.Epic{ID: id, Title: "Epic " + id, Status: status, DependsOn: deps}
}

func TestCompute_Acyclic(t *testing.T) {
	view := Compute([]domain.Epic{
		epic("A", domain.StatusCompleted),
		epic("B", domain.StatusActive, "A"),
		epic("C", domain.StatusPlanning, "B"),
		epic("D", domain.StatusPlanning, "A"),
	})

	require.Len(t, view.Groups, 3)
	assert.Equal(t, domain.PhaseCompleted, view.Groups[0].Status)
	assert.Equal(t, domain.PhaseInProgress, view.Groups[1].Status)
	assert.Equal(t, 2, view.Groups[1].TotalCount)
	assert.Equal(t, domain.PhaseBlocked, view.Groups[2].Status)
	assert.Empty(t, view.Unresolved)
	assert.Empty(t, view.CycleMembers)
	assert.False(t, view.HasCycles())
	assert.Equal(t, 3, view.Phase["C"])
}

func TestCompute_MatchesGroupsForAcyclicInput(t *testing.T) {
	epics := []domain.Epic{
		epic("A", domain.StatusCompleted),
		epic("B", domain.StatusPlanning, "A", "missing"),
		epic("C", domain.StatusCompleted),
		epic("D", domain.StatusInProgress, "B", "C"),
	}

	want, err := phases.Groups(epics)
	require.NoError(t, err)

	assert.Equal(t, want, Compute(epics).Groups)
}

func TestCompute_CyclicSnapshot(t *testing.T) {
	view := Compute([]domain.Epic{
		epic("A", domain.StatusPlanning),
		epic("X", domain.StatusPlanning, "Y"),
		epic("Y", domain.StatusPlanning, "X"),
		epic("Z", domain.StatusPlanning, "X"),
	})

	require.Len(t, view.Groups, 1)
	assert.Equal(t, 1, view.Groups[0].TotalCount)
	assert.True(t, view.HasCycles())

	ids := make([]string, len(view.Unresolved))
	for i, e := range view.Unresolved {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, ids)
	assert.Equal(t, []string{"X", "Y"}, view.CycleMembers)
	assert.True(t, view.InCycle("X"))
	assert.False(t, view.InCycle("Z"), "downstream of a cycle is not on it")
}

func TestCompute_InCycleMatchesMembers(t *testing.T) {
	// Two disjoint loops plus a long acyclic tail
	epics := []domain.Epic{
		epic("P", domain.StatusPlanning, "Q"),
		epic("Q", domain.StatusPlanning, "P"),
		epic("R", domain.StatusPlanning, "S"),
		epic("S", domain.StatusPlanning, "T"),
		epic("T", domain.StatusPlanning, "R"),
	}
	for i := range 200 {
		epics = append(epics, epic(fmt.Sprintf("t%d", i), domain.StatusPlanning))
	}

	view := Compute(epics)

	require.Equal(t, []string{"P", "Q", "R", "S", "T"}, view.CycleMembers)
	for _, e := range epics {
		assert.Equal(t, slices.Contains(view.CycleMembers, e.ID), view.InCycle(e.ID), e.ID)
	}
	assert.False(t, view.InCycle("missing"))
	assert.False(t, View{}.InCycle("P"), "zero view has no cycles")
}

func TestPlanner_Groups(t *testing.T) {
	ctx := context.Background()

	p := New(&memSource{epics: []domain.Epic{epic("A", domain.StatusPlanning)}}, logging.Discard())
	groups, err := p.Groups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	p = New(&memSource{epics: []domain.Epic{
		epic("A", domain.StatusPlanning, "B"),
		epic("B", domain.StatusPlanning, "A"),
	}}, logging.Discard())
	_, err = p.Groups(ctx)
	assert.ErrorIs(t, err, domain.ErrCycle)
}

func TestPlanner_PhaseOf(t *testing.T) {
	p := New(&memSource{epics: []domain.Epic{
		epic("A", domain.StatusPlanning),
		epic("B", domain.StatusPlanning, "A"),
	}}, logging.Discard())

	phase, err := p.PhaseOf(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, 2, phase)

	_, err = p.PhaseOf(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanner_CheckCycle(t *testing.T) {
	p := New(&memSource{epics: []domain.Epic{
		epic("A", domain.StatusPlanning),
		epic("B", domain.StatusPlanning, "A"),
	}}, logging.Discard())
	ctx := context.Background()

	check, err := p.CheckCycle(ctx, "A", []string{"B"})
	require.NoError(t, err)
	assert.True(t, check.Cyclic)
	assert.Equal(t, []string{"A", "B", "A"}, check.Path)

	check, err = p.CheckCycle(ctx, "B", []string{"A", "ghost"})
	require.NoError(t, err)
	assert.False(t, check.Cyclic)
	assert.Empty(t, check.Path)

	// A new id can be checked before it exists
	check, err = p.CheckCycle(ctx, "N", []string{"B"})
	require.NoError(t, err)
	assert.False(t, check.Cyclic)
}

func TestPlanner_Preview(t *testing.T) {
	src := &memSource{epics: []domain.Epic{
		epic("A", domain.StatusPlanning),
		epic("B", domain.StatusPlanning, "A"),
		epic("C", domain.StatusPlanning),
	}}
	p := New(src, logging.Discard())
	ctx := context.Background()

	preview, err := p.Preview(ctx, "C", []string{"B"})
	require.NoError(t, err)
	assert.Equal(t, PreviewResult{ID: "C", Phase: 3}, preview)

	preview, err = p.Preview(ctx, "A", []string{"B"})
	require.NoError(t, err)
	assert.True(t, preview.Cyclic)
	assert.Zero(t, preview.Phase)
	assert.Equal(t, []string{"A", "B", "A"}, preview.Path)

	// Nothing was written
	c, err := src.Get(ctx, "C")
	require.NoError(t, err)
	assert.Empty(t, c.DependsOn)
}

func TestPlanner_SetDependsOn(t *testing.T) {
	src := &memSource{epics: []domain.Epic{
		epic("A", domain.StatusPlanning),
		epic("B", domain.StatusPlanning, "A"),
	}}
	p := New(src, logging.Discard())

	updated, err := p.SetDependsOn(context.Background(), "A", []string{"C", "C", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, updated.DependsOn)

	_, err = p.SetDependsOn(context.Background(), "A", []string{"B"})
	assert.ErrorIs(t, err, domain.ErrCycle)
}

// creatingSource adds Create to memSource
type creatingSource struct {
	memSource
}

func (c *creatingSource) Create(ctx context.Context, e domain.Epic) (domain.Epic, error) {
	if e.Status == "" {
		e.Status = domain.StatusPlanning
	}
	c.epics = append(c.epics, e)
	return e, nil
}

func TestPlanner_Create(t *testing.T) {
	ctx := context.Background()

	readOnly := New(&memSource{}, logging.Discard())
	_, err := readOnly.Create(ctx, domain.Epic{ID: "A"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	src := &creatingSource{memSource{epics: []domain.Epic{epic("A", domain.StatusCompleted)}}}
	p := New(src, logging.Discard())
	created, err := p.Create(ctx, domain.Epic{ID: "B", DependsOn: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanning, created.Status)

	phase, err := p.PhaseOf(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 2, phase)
}

func TestPlanner_CycleStatus(t *testing.T) {
	src := &memSource{epics: []domain.Epic{epic("A", domain.StatusPlanning)}}
	p := New(src, logging.Discard())
	ctx := context.Background()

	var got []domain.Status
	for i := 0; i < 3; i++ {
		s, err := p.CycleStatus(ctx, "A")
		require.NoError(t, err)
		got = append(got, s)
	}
	assert.Equal(t, []domain.Status{domain.StatusActive, domain.StatusCompleted, domain.StatusPlanning}, got)

	_, err := p.CycleStatus(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, domain.StatusCompleted, NextStatus(domain.StatusInProgress))
	assert.Equal(t, domain.StatusPlanning, NextStatus(""))
}
