package services

import (
	"errors"
	"stop-sequencing-service/internal/domain"
)

// Run the local heuristic pipeline:
// grouping -> seed + nearest neighbor -> 2-opt -> constraints.
// The second return value reports whether 2-opt converged within its pass budget.
func SequenceLocally(stops []domain.Stop, settings domain.OptimizationSettings) ([]domain.Stop, bool) {
	if len(stops) <= 2 {
		return domain.Resequence(stops), true
	}

	grouped := GroupNearbyStops(stops)
	tour := NearestNeighborTour(grouped)
	refined, converged := TwoOptRefine(tour)

	return ApplyConstraints(refined, stops, settings), converged
}

// Reports whether got holds exactly the stops of want (by id), each once.
func isPermutation(got, want []domain.Stop) bool {
	if len(got) != len(want) {
		return false
	}
	counts := make(map[string]int, len(want))
	for _, s := range want {
		counts[s.ID]++
	}
	for _, s := range got {
		counts[s.ID]--
		if counts[s.ID] < 0 {
			return false
		}
	}
	return true
}

func isContiguousSequence(stops []domain.Stop) bool {
	for i, s := range stops {
		if s.Sequence != i+1 {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
