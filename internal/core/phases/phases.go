// Package phases provides dependency phase computation for epics.
//
// An epic's phase is 1 + the longest dependsOn chain ending at it:
//
// Phase 1 = epics with no known dependencies (ready now)
// Phase N = epics whose deepest dependency sits in phase N-1
//
// Dependencies on ids missing from the snapshot are ignored. Every entry
// point here either refuses cycles with a *domain.CycleError or reports the
// affected epics separately; none of them recurse, so a cyclic graph can
// never exhaust the stack.
package phases

import (
	"sort"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// Graph maps an epic ID to the IDs it depends on
type Graph map[string][]string

// Cache memoizes computed phases for one snapshot.
// Use a fresh Cache per snapshot; any dependsOn edit invalidates it.
type Cache map[string]int

// GraphOf builds the dependency graph for a snapshot of epics
func GraphOf(epics []domain.Epic) Graph {
	g := make(Graph, len(epics))
	for _, e := range epics {
		g[e.ID] = e.DependsOn
	}
	return g
}

// With returns a copy of g where id depends on deps
func (g Graph) With(id string, deps []string) Graph {
	out := make(Graph, len(g)+1)
	for k, v := range g {
		out[k] = v
	}
	out[id] = deps
	return out
}

// frame is one entry of the explicit traversal stack used by PhaseOf
type frame struct {
	id   string
	next int // index of the next dependency to visit
	best int // highest dependency phase seen so far
}

// PhaseOf returns the phase of id within graph.
//
// Parameters:
//   - id: The epic to evaluate
//   - graph: Dependency snapshot to traverse
//   - cache: Memo shared between calls over the same snapshot (nil allocates one)
//
// Returns: 1 for unknown ids and for epics without known dependencies,
// otherwise 1 + the highest dependency phase. A dependency chain that
// returns to an epic still being evaluated yields a *domain.CycleError.
//
// Example:
//
//	phase, err := PhaseOf("ep-c", Graph{"ep-a": nil, "ep-b": {"ep-a"}, "ep-c": {"ep-a", "ep-b"}}, nil)
//	// phase => 3
func PhaseOf(id string, graph Graph, cache Cache) (int, error) {
	if cache == nil {
		cache = make(Cache)
	}
	if phase, ok := cache[id]; ok {
		return phase, nil
	}
	if _, ok := graph[id]; !ok {
		return 1, nil
	}

	stack := []frame{{id: id}}
	onStack := map[string]int{id: 0}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := graph[top.id]

		if top.next < len(deps) {
			dep := deps[top.next]
			top.next++

			if phase, ok := cache[dep]; ok {
				top.best = max(top.best, phase)
				continue
			}
			if _, known := graph[dep]; !known {
				continue
			}
			if idx, ok := onStack[dep]; ok {
				return 0, &domain.CycleError{Path: stackPath(stack[idx:], dep)}
			}

			stack = append(stack, frame{id: dep})
			onStack[dep] = len(stack) - 1
			continue
		}

		// All dependencies resolved
		phase := top.best + 1
		cache[top.id] = phase
		delete(onStack, top.id)
		stack = stack[:len(stack)-1]

		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			parent.best = max(parent.best, phase)
		}
	}

	return cache[id], nil
}

// stackPath renders the frames of a detected cycle, closing it with last
func stackPath(frames []frame, last string) []string {
	path := make([]string, 0, len(frames)+1)
	for _, f := range frames {
		path = append(path, f.id)
	}
	return append(path, last)
}

// GroupByPhase buckets epics by phase using one shared cache.
// Order within a bucket follows the input order.
func GroupByPhase(epics []domain.Epic) (map[int][]domain.Epic, error) {
	graph := GraphOf(epics)
	cache := make(Cache, len(epics))
	byPhase := make(map[int][]domain.Epic)

	for _, e := range epics {
		phase, err := PhaseOf(e.ID, graph, cache)
		if err != nil {
			return nil, err
		}
		byPhase[phase] = append(byPhase[phase], e)
	}

	return byPhase, nil
}

// PhaseStatus classifies one phase group.
//
// Precedence: an empty phase is ready; a fully completed phase is completed;
// a later phase is blocked while any earlier phase has unfinished members
// (whether or not its own epics depend on them); otherwise the phase is
// in progress if any member is active, else ready.
func PhaseStatus(members []domain.Epic, phaseNumber int, groups map[int]domain.PhaseGroup) domain.PhaseStatus {
	if len(members) == 0 {
		return domain.PhaseReady
	}

	allCompleted := true
	anyActive := false
	for _, e := range members {
		if !e.Status.IsCompleted() {
			allCompleted = false
		}
		if e.Status.IsActive() {
			anyActive = true
		}
	}
	if allCompleted {
		return domain.PhaseCompleted
	}

	for prev := 1; prev < phaseNumber; prev++ {
		if g, ok := groups[prev]; ok && g.Incomplete() {
			return domain.PhaseBlocked
		}
	}

	if anyActive {
		return domain.PhaseInProgress
	}
	return domain.PhaseReady
}

// BuildGroups turns phase buckets into groups sorted by phase number,
// with completion counts and statuses filled in
func BuildGroups(byPhase map[int][]domain.Epic) []domain.PhaseGroup {
	numbers := make([]int, 0, len(byPhase))
	for n := range byPhase {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	// Counts first: a phase's status depends on every earlier phase's counts
	counted := make(map[int]domain.PhaseGroup, len(numbers))
	for _, n := range numbers {
		members := byPhase[n]
		completed := 0
		for _, e := range members {
			if e.Status.IsCompleted() {
				completed++
			}
		}
		counted[n] = domain.PhaseGroup{
			Number:         n,
			Epics:          members,
			CompletedCount: completed,
			TotalCount:     len(members),
		}
	}

	groups := make([]domain.PhaseGroup, 0, len(numbers))
	for _, n := range numbers {
		g := counted[n]
		g.Status = PhaseStatus(g.Epics, n, counted)
		groups = append(groups, g)
	}
	return groups
}

// Groups computes the phase groups for a snapshot of epics
func Groups(epics []domain.Epic) ([]domain.PhaseGroup, error) {
	byPhase, err := GroupByPhase(epics)
	if err != nil {
		return nil, err
	}
	return BuildGroups(byPhase), nil
}

// DetectCycle reports whether making targetID depend on candidateDeps
// would close a dependency cycle. Run it before committing any dependsOn
// edit.
func DetectCycle(candidateDeps []string, targetID string, graph Graph) bool {
	return CyclePath(candidateDeps, targetID, graph) != nil
}

// CyclePath returns the cycle that making targetID depend on candidateDeps
// would create, starting and ending at targetID, or nil if there is none.
//
// The walk is an explicit-stack DFS from the candidates along dependsOn
// edges; unknown ids are dead ends and each id is expanded at most once.
func CyclePath(candidateDeps []string, targetID string, graph Graph) []string {
	parent := make(map[string]string)
	seen := make(map[string]bool)
	stack := make([]string, 0, len(candidateDeps))

	push := func(from, id string) []string {
		if id == targetID {
			return pathTo(parent, from, targetID)
		}
		if !seen[id] {
			seen[id] = true
			parent[id] = from
			stack = append(stack, id)
		}
		return nil
	}

	for i := len(candidateDeps) - 1; i >= 0; i-- {
		if path := push(targetID, candidateDeps[i]); path != nil {
			return path
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		deps := graph[id]
		for i := len(deps) - 1; i >= 0; i-- {
			if path := push(id, deps[i]); path != nil {
				return path
			}
		}
	}

	return nil
}

// pathTo walks parent links from last back to targetID and returns the
// closed path targetID → ... → last → targetID
func pathTo(parent map[string]string, last, targetID string) []string {
	reversed := []string{targetID}
	for cur := last; cur != targetID; cur = parent[cur] {
		reversed = append(reversed, cur)
	}
	reversed = append(reversed, targetID)

	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

// InCycle reports whether id lies on a dependency cycle in graph
func InCycle(id string, graph Graph) bool {
	deps, ok := graph[id]
	if !ok {
		return false
	}
	return DetectCycle(deps, id, graph)
}

// CycleMembers returns every id that lies on some cycle, sorted
func CycleMembers(graph Graph) []string {
	var members []string
	for id := range graph {
		if InCycle(id, graph) {
			members = append(members, id)
		}
	}
	sort.Strings(members)
	return members
}

// Preview returns the phase id would get if its dependencies were replaced
// by proposed. A proposal that would close a cycle returns a
// *domain.CycleError and no phase.
func Preview(id string, proposed []string, graph Graph) (int, error) {
	if path := CyclePath(proposed, id, graph); path != nil {
		return 0, &domain.CycleError{Path: path}
	}
	return PhaseOf(id, graph.With(id, proposed), nil)
}
