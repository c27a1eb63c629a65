package services

import (
	"math"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
)

// Build a tour using a greedy nearest-neighbor algorithm.
//
// The tour starts at the seed from SelectSeed and repeatedly appends the
// closest unvisited stop by straight-line distance. It does not attempt global
// optimization; TwoOptRefine improves the result afterwards.
// O(n²) distance evaluations; intended for tens to low hundreds of stops.
func NearestNeighborTour(stops []domain.Stop) []domain.Stop {
	if len(stops) <= 2 {
		return domain.CloneStops(stops)
	}

	visited := make([]bool, len(stops))
	current := SelectSeed(stops)
	visited[current] = true

	tour := make([]domain.Stop, 0, len(stops))
	tour = append(tour, stops[current])

	for len(tour) < len(stops) {
		next := -1
		minDist := math.Inf(1)

		// Strict comparison keeps the lowest index on ties.
		for j, s := range stops {
			if visited[j] {
				continue
			}
			d := geo.DistanceKm(stops[current].Coordinates, s.Coordinates)
			if d < minDist {
				minDist = d
				next = j
			}
		}

		if next < 0 {
			break
		}
		visited[next] = true
		tour = append(tour, stops[next])
		current = next
	}

	return domain.Resequence(tour)
}
