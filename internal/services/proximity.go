package services

import (
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
)

// Stops closer than this are treated as the same place.
const ProximityThresholdKm = 0.05

// Reorder stops so that stops within ProximityThresholdKm of each other sit
// next to each other.
//
// A single left-to-right scan places each unplaced stop and immediately
// follows it with every later unplaced stop strictly within the threshold,
// keeping their original relative order. Grouping is not transitive. O(n²).
func GroupNearbyStops(stops []domain.Stop) []domain.Stop {
	if len(stops) <= 2 {
		return domain.CloneStops(stops)
	}

	placed := make([]bool, len(stops))
	out := make([]domain.Stop, 0, len(stops))

	for i := range stops {
		if placed[i] {
			continue
		}
		placed[i] = true
		out = append(out, stops[i])

		for j := i + 1; j < len(stops); j++ {
			if placed[j] {
				continue
			}
			if geo.DistanceKm(stops[i].Coordinates, stops[j].Coordinates) < ProximityThresholdKm {
				placed[j] = true
				out = append(out, stops[j])
			}
		}
	}

	return out
}
