package services

import (
	"slices"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
)

const (
	// Upper bound on improvement passes.
	TwoOptMaxPasses = 100
	// Minimum gain in km for a reversal to be accepted.
	TwoOptEpsilonKm = 0.001
)

// Improve an open-path tour with first-improvement 2-opt moves.
//
// For each pair of edges (i,i+1) and (j,j+1) the segment i+1..j is reversed
// when that shortens the path by more than TwoOptEpsilonKm. When j is the last
// index the path has no edge after j and only the first edge changes. After
// an accepted move the scan restarts. The second return value is false when
// the pass budget ran out before a pass completed without improvement.
func TwoOptRefine(stops []domain.Stop) ([]domain.Stop, bool) {
	tour := domain.CloneStops(stops)
	n := len(tour)
	if n <= 3 {
		return tour, true
	}

	d := func(a, b int) float64 {
		return geo.DistanceKm(tour[a].Coordinates, tour[b].Coordinates)
	}

	improved := true
	passes := 0
	for improved && passes < TwoOptMaxPasses {
		improved = false
		passes++

	scan:
		for i := 0; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				current := d(i, i+1)
				candidate := d(i, j)
				if j+1 < n {
					current += d(j, j+1)
					candidate += d(i+1, j+1)
				}

				if candidate < current-TwoOptEpsilonKm {
					slices.Reverse(tour[i+1 : j+1])
					improved = true
					break scan
				}
			}
		}
	}

	return domain.Resequence(tour), !improved
}
