package services

import (
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
	"strconv"
	"testing"
)

func stop(id string, lat, lon float64) domain.Stop {
	return domain.Stop{ID: id, Address: "addr " + id, Coordinates: domain.Coordinates{Lat: lat, Lon: lon}}
}

// Stops of the downtown scenario: 1 and 4 sit in the same block.
func scenarioStops() []domain.Stop {
	return []domain.Stop{
		stop("1", 40.730, -73.935),
		stop("2", 40.731, -73.990),
		stop("3", 40.758, -73.985),
		stop("4", 40.729, -73.936),
	}
}

// Deterministic pseudo-random stops around Manhattan.
func randomStops(n int, seed uint32) []domain.Stop {
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed>>8) / float64(1<<24)
	}
	stops := make([]domain.Stop, n)
	for i := range stops {
		stops[i] = stop(strconv.Itoa(i+1), 40.70+next()*0.1, -74.00+next()*0.1)
	}
	return stops
}

func ids(stops []domain.Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.ID
	}
	return out
}

func pathLength(stops []domain.Stop) float64 {
	return geo.PathLengthKm(stopCoordinates(stops))
}

func assertPermutation(t *testing.T, got, want []domain.Stop) {
	t.Helper()
	if !isPermutation(got, want) {
		t.Fatalf("not a permutation: got %v, want ids %v", ids(got), ids(want))
	}
	if !isContiguousSequence(got) {
		seqs := make([]int, len(got))
		for i, s := range got {
			seqs[i] = s.Sequence
		}
		t.Fatalf("sequence not 1..N: %v", seqs)
	}
}

func assertIDs(t *testing.T, got []domain.Stop, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}
