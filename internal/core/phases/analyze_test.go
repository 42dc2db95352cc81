package phases

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/riordanpawley/epicboard/internal/domain"
)

func TestAnalyze_NoDependencies(t *testing.T) {
	// Three parallel epics with no dependencies
	result := Analyze([]domain.Epic{planning("ep-1"), planning("ep-2"), planning("ep-3")})

	// All epics should be in phase 1
	if result.MaxPhase != 1 {
		t.Errorf("Expected MaxPhase 1, got %d", result.MaxPhase)
	}

	for _, id := range []string{"ep-1", "ep-2", "ep-3"} {
		info, exists := result.Phases[id]
		if !exists {
			t.Fatalf("Epic %s not in result", id)
		}
		if info.Phase != 1 {
			t.Errorf("Epic %s: expected phase 1, got %d", id, info.Phase)
		}
		if len(info.BlockedBy) != 0 {
			t.Errorf("Epic %s: expected no blockers, got %v", id, info.BlockedBy)
		}
	}

	if result.PhaseCounts[1] != 3 {
		t.Errorf("Expected 3 epics in phase 1, got %d", result.PhaseCounts[1])
	}
	if result.HasCycles() {
		t.Errorf("Expected no unresolved epics, got %v", result.Unresolved)
	}
}

func TestAnalyze_DiamondGraph(t *testing.T) {
	// Diamond dependency:
	//     ep-1 (phase 1)
	//    /    \
	// ep-2    ep-3 (phase 2)
	//    \    /
	//     ep-4 (phase 3)
	result := Analyze([]domain.Epic{
		planning("ep-1"),
		planning("ep-2", "ep-1"),
		planning("ep-3", "ep-1"),
		planning("ep-4", "ep-2", "ep-3"),
	})

	if result.MaxPhase != 3 {
		t.Errorf("Expected MaxPhase 3, got %d", result.MaxPhase)
	}

	expected := map[string]int{"ep-1": 1, "ep-2": 2, "ep-3": 2, "ep-4": 3}
	for id, phase := range expected {
		if got := result.Phases[id].Phase; got != phase {
			t.Errorf("%s: expected phase %d, got %d", id, phase, got)
		}
	}

	if got := result.Phases["ep-4"].BlockedBy; !reflect.DeepEqual(got, []string{"ep-2", "ep-3"}) {
		t.Errorf("ep-4: expected blocked by [ep-2 ep-3], got %v", got)
	}

	if result.PhaseCounts[1] != 1 || result.PhaseCounts[2] != 2 || result.PhaseCounts[3] != 1 {
		t.Errorf("Unexpected phase counts %v", result.PhaseCounts)
	}
}

func TestAnalyze_CircularDependency(t *testing.T) {
	// ep-1 -> ep-2 -> ep-3 -> ep-1, ep-4 waits on the loop, ep-5 is free
	result := Analyze([]domain.Epic{
		planning("ep-1", "ep-3"),
		planning("ep-2", "ep-1"),
		planning("ep-3", "ep-2"),
		planning("ep-4", "ep-1"),
		planning("ep-5"),
	})

	// The algorithm must not loop forever and must keep what it could place
	if got := result.Phases["ep-5"].Phase; got != 1 {
		t.Errorf("ep-5: expected phase 1, got %d", got)
	}

	want := []string{"ep-1", "ep-2", "ep-3", "ep-4"}
	if !reflect.DeepEqual(result.Unresolved, want) {
		t.Errorf("Unresolved = %v, want %v", result.Unresolved, want)
	}
	if !result.HasCycles() {
		t.Error("HasCycles() should be true")
	}
	for _, id := range want {
		if _, placed := result.Phases[id]; placed {
			t.Errorf("%s should not receive a phase", id)
		}
	}
}

func TestAnalyze_IgnoresMissingDependencies(t *testing.T) {
	// ep-1 depends on an epic outside the snapshot
	result := Analyze([]domain.Epic{
		planning("ep-1", "ep-external"),
		planning("ep-2", "ep-1"),
	})

	if result.Phases["ep-1"].Phase != 1 {
		t.Errorf("ep-1: expected phase 1 (missing dep ignored), got %d", result.Phases["ep-1"].Phase)
	}
	if len(result.Phases["ep-1"].BlockedBy) != 0 {
		t.Errorf("ep-1: missing dep should not be listed as blocker, got %v", result.Phases["ep-1"].BlockedBy)
	}
	if result.Phases["ep-2"].Phase != 2 {
		t.Errorf("ep-2: expected phase 2, got %d", result.Phases["ep-2"].Phase)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result := Analyze(nil)

	if result.MaxPhase != 0 {
		t.Errorf("Expected MaxPhase 0 for empty input, got %d", result.MaxPhase)
	}
	if len(result.Phases) != 0 {
		t.Errorf("Expected empty phases map, got %d entries", len(result.Phases))
	}
	if len(result.PhaseCounts) != 0 {
		t.Errorf("Expected empty phase counts, got %d entries", len(result.PhaseCounts))
	}
}

func TestAnalyze_AgreesWithPhaseOf(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 25; round++ {
		epics := randomDAG(rng, 40)
		result := Analyze(epics)
		graph := GraphOf(epics)
		cache := make(Cache)

		for _, e := range epics {
			want, err := PhaseOf(e.ID, graph, cache)
			if err != nil {
				t.Fatal(err)
			}
			if got := result.Phases[e.ID].Phase; got != want {
				t.Fatalf("round %d: Analyze phase for %s = %d, PhaseOf = %d", round, e.ID, got, want)
			}
		}
	}
}

func TestResult_Bucket(t *testing.T) {
	epics := []domain.Epic{
		planning("C", "A"),
		planning("A"),
		planning("X", "Y"),
		planning("Y", "X"),
		planning("B"),
	}
	result := Analyze(epics)

	byPhase, unresolved := result.Bucket(epics)

	if got := idsOf(byPhase[1]); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("phase 1 = %v", got)
	}
	if got := idsOf(byPhase[2]); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("phase 2 = %v", got)
	}
	if got := idsOf(unresolved); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("unresolved = %v", got)
	}
}
