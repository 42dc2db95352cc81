package phases

import (
	"sort"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// EpicPhaseInfo contains phase information for a single epic
type EpicPhaseInfo struct {
	// Phase number (1 = ready, 2+ = waits on earlier phases)
	Phase int
	// IDs of known epics this one depends on (empty for Phase 1)
	BlockedBy []string
}

// Result contains the result of phase computation for a snapshot
type Result struct {
	// Map from epic ID to phase info, for every epic that received a phase
	Phases map[string]EpicPhaseInfo
	// Maximum phase number (for UI iteration)
	MaxPhase int
	// Count of epics per phase
	PhaseCounts map[int]int
	// Epics that never became ready: on a cycle or downstream of one. Sorted.
	Unresolved []string
}

// Analyze computes phases for a snapshot by peeling off, level by level,
// every epic whose known dependencies already have a phase (Kahn's algorithm).
//
// Unlike GroupByPhase it never fails: epics on or behind a cycle are listed
// in Result.Unresolved instead. For acyclic input the phases match PhaseOf.
//
// Example:
//
//	result := Analyze(epics)
//	// result.Phases["ep-b"] => { Phase: 2, BlockedBy: []string{"ep-a"} }
func Analyze(epics []domain.Epic) Result {
	known := make(map[string]bool, len(epics))
	for _, e := range epics {
		known[e.ID] = true
	}

	// blockers[id] = known epics that id depends on
	blockers := make(map[string][]string, len(epics))
	for _, e := range epics {
		var deps []string
		for _, dep := range e.DependsOn {
			if known[dep] {
				deps = append(deps, dep)
			}
		}
		blockers[e.ID] = deps
	}

	phases := make(map[string]EpicPhaseInfo, len(epics))
	remaining := make(map[string]bool, len(epics))
	for _, e := range epics {
		remaining[e.ID] = true
	}

	currentPhase := 1

	for len(remaining) > 0 {
		// Find all epics whose blockers are all resolved, in input order
		var readyThisPhase []string
		for _, e := range epics {
			if !remaining[e.ID] {
				continue
			}

			ready := true
			for _, blocker := range blockers[e.ID] {
				if remaining[blocker] {
					ready = false
					break
				}
			}
			if ready {
				readyThisPhase = append(readyThisPhase, e.ID)
			}
		}

		// Nothing ready but epics remain: the rest sits on or behind a cycle
		if len(readyThisPhase) == 0 {
			break
		}

		for _, id := range readyThisPhase {
			phases[id] = EpicPhaseInfo{
				Phase:     currentPhase,
				BlockedBy: blockers[id],
			}
			delete(remaining, id)
		}

		currentPhase++
	}

	unresolved := make([]string, 0, len(remaining))
	for id := range remaining {
		unresolved = append(unresolved, id)
	}
	sort.Strings(unresolved)

	// Compute phase counts and maxPhase
	phaseCounts := make(map[int]int)
	maxPhase := 0
	for _, info := range phases {
		phaseCounts[info.Phase]++
		if info.Phase > maxPhase {
			maxPhase = info.Phase
		}
	}

	return Result{
		Phases:      phases,
		MaxPhase:    maxPhase,
		PhaseCounts: phaseCounts,
		Unresolved:  unresolved,
	}
}

// HasCycles reports whether some epics could not be placed in a phase
func (r Result) HasCycles() bool {
	return len(r.Unresolved) > 0
}

// Bucket splits epics into phase buckets plus the unresolved ones,
// keeping input order inside each bucket
func (r Result) Bucket(epics []domain.Epic) (map[int][]domain.Epic, []domain.Epic) {
	byPhase := make(map[int][]domain.Epic, r.MaxPhase)
	var unresolved []domain.Epic

	for _, e := range epics {
		info, ok := r.Phases[e.ID]
		if !ok {
			unresolved = append(unresolved, e)
			continue
		}
		byPhase[info.Phase] = append(byPhase[info.Phase], e)
	}

	return byPhase, unresolved
}
