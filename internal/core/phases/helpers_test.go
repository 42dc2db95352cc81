package phases

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/riordanpawley/epicboard/internal/domain"
)

// randomDAG builds n epics where each one only depends on epics created
// before it, plus the odd dependency on an id that does not exist. The
// result is shuffled so input order says nothing about phases.
func randomDAG(rng *rand.Rand, n int) []domain.Epic {
	statuses := []domain.Status{
		domain.StatusPlanning,
		domain.StatusActive,
		domain.StatusInProgress,
		domain.StatusCompleted,
	}

	epics := make([]domain.Epic, n)
	for i := range epics {
		deps := []string{}
		if i > 0 {
			for k := rng.Intn(4); k > 0; k-- {
				dep := fmt.Sprintf("e%d", rng.Intn(i))
				if !slices.Contains(deps, dep) {
					deps = append(deps, dep)
				}
			}
		}
		if rng.Intn(8) == 0 {
			deps = append(deps, fmt.Sprintf("missing-%d", i))
		}
		epics[i] = makeEpic(fmt.Sprintf("e%d", i), statuses[rng.Intn(len(statuses))], deps...)
	}

	rng.Shuffle(len(epics), func(i, j int) { epics[i], epics[j] = epics[j], epics[i] })
	return epics
}

func idsOf(epics []domain.Epic) []string {
	ids := make([]string, 0, len(epics))
	for _, e := range epics {
		ids = append(ids, e.ID)
	}
	return ids
}
