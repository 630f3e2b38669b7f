package runtime

import (
	"sort"

	"github.com/halden-bio/catalyst/pkg/domain"
)

// rankByPotency orders candidates by pIC50 descending (higher is better).
// The sort is stable: ties keep their relative input order, so the "lead
// candidate" is deterministic for a given triage result.
func rankByPotency(candidates []domain.Candidate) []domain.Candidate {
	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PIC50 > ranked[j].PIC50
	})
	return ranked
}
