package services

import "stop-sequencing-service/internal/domain"

// Apply ordering constraints to a tour produced by the local pipeline.
//
// With LockLastDestination the stop that was last in original (by id) is
// moved to the end of tour. This runs after 2-opt so no refinement can undo it.
// RoundTrip never reorders: the tour stays open and the return leg is
// accounted for by callers computing distance or drawing the path.
func ApplyConstraints(tour []domain.Stop, original []domain.Stop, settings domain.OptimizationSettings) []domain.Stop {
	out := domain.CloneStops(tour)

	if settings.LockLastDestination && len(original) > 0 && len(out) > 1 {
		lastID := original[len(original)-1].ID
		for i, s := range out {
			if s.ID != lastID {
				continue
			}
			out = append(out[:i:i], out[i+1:]...)
			out = append(out, s)
			break
		}
	}

	return domain.Resequence(out)
}
