package services

import (
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
)

// Index of the stop farthest from the centroid of all stops. Starting a
// greedy tour from an extreme point avoids doubling back across the set.
// The first index wins ties; inputs of length <= 1 return 0.
func SelectSeed(stops []domain.Stop) int {
	if len(stops) <= 1 {
		return 0
	}

	c := geo.Centroid(stopCoordinates(stops))

	best := 0
	maxDist := -1.0
	for i, s := range stops {
		d := geo.DistanceKm(s.Coordinates, c)
		if d > maxDist {
			maxDist = d
			best = i
		}
	}
	return best
}

func stopCoordinates(stops []domain.Stop) []domain.Coordinates {
	pts := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		pts[i] = s.Coordinates
	}
	return pts
}
