package services

import (
	"stop-sequencing-service/internal/domain"
	"testing"
)

func TestGroupNearbyStops(t *testing.T) {
	stops := []domain.Stop{
		stop("a", 40.7300, -73.9350),
		stop("b", 40.7600, -73.9800),
		stop("c", 40.7303, -73.9350), // ~33 m from a
		stop("d", 40.7000, -73.9000),
		stop("e", 40.7601, -73.9801), // ~14 m from b
	}

	got := GroupNearbyStops(stops)
	assertIDs(t, got, "a", "c", "b", "e", "d")

	if stops[1].ID != "b" {
		t.Fatalf("input mutated: %v", ids(stops))
	}
}

func TestGroupNearbyStopsIsNotTransitive(t *testing.T) {
	// b is within 50 m of a and c, but a and c are ~67 m apart.
	stops := []domain.Stop{
		stop("a", 40.7300, -73.9350),
		stop("x", 40.8000, -73.9000),
		stop("c", 40.7306, -73.9350),
		stop("b", 40.7303, -73.9350),
	}

	got := GroupNearbyStops(stops)
	assertIDs(t, got, "a", "b", "x", "c")
}

func TestSelectSeed(t *testing.T) {
	if got := SelectSeed(nil); got != 0 {
		t.Fatalf("SelectSeed(nil) = %d", got)
	}
	if got := SelectSeed(scenarioStops()); got != 2 {
		t.Fatalf("SelectSeed(scenario) = %d, want 2", got)
	}

	// Symmetric pair: both equally far from the centroid, first wins.
	pair := []domain.Stop{stop("a", 40.0, -74.0), stop("b", 40.0, -73.0)}
	if got := SelectSeed(pair); got != 0 {
		t.Fatalf("tie = %d, want 0", got)
	}
}

func TestNearestNeighborTour(t *testing.T) {
	got := NearestNeighborTour(scenarioStops())
	assertIDs(t, got, "3", "2", "4", "1")
	assertPermutation(t, got, scenarioStops())
}

func TestTwoOptRefineUncrossesPath(t *testing.T) {
	tour := []domain.Stop{
		stop("a", 0, 0),
		stop("b", 0, 0.01),
		stop("c", 0.01, 0),
		stop("d", 0.01, 0.01),
	}

	got, converged := TwoOptRefine(tour)
	if !converged {
		t.Fatalf("expected convergence")
	}
	assertIDs(t, got, "a", "b", "d", "c")
	if pathLength(got) >= pathLength(tour) {
		t.Fatalf("length %v not shorter than %v", pathLength(got), pathLength(tour))
	}
}

func TestTwoOptRefineNeverLengthens(t *testing.T) {
	for seed := uint32(1); seed <= 40; seed++ {
		stops := randomStops(5+int(seed%20), seed)
		nn := NearestNeighborTour(stops)
		refined, _ := TwoOptRefine(nn)

		assertPermutation(t, refined, stops)
		if pathLength(refined) > pathLength(nn)+1e-9 {
			t.Fatalf("seed %d: refined %v > nn %v", seed, pathLength(refined), pathLength(nn))
		}
	}
}

func TestStagesPassThroughSmallInputs(t *testing.T) {
	inputs := [][]domain.Stop{
		{},
		{stop("a", 40.7, -73.9)},
		{stop("b", 40.8, -73.9), stop("a", 40.7, -73.9)},
	}

	for _, in := range inputs {
		want := ids(in)
		if got := GroupNearbyStops(in); len(got) != len(in) {
			t.Fatalf("group changed length")
		} else {
			assertIDs(t, got, want...)
		}
		assertIDs(t, NearestNeighborTour(in), want...)
		refined, converged := TwoOptRefine(in)
		if !converged {
			t.Fatalf("small input should report convergence")
		}
		assertIDs(t, refined, want...)
	}

	three := []domain.Stop{stop("c", 0, 0.02), stop("a", 0, 0), stop("b", 0, 0.01)}
	refined, _ := TwoOptRefine(three)
	assertIDs(t, refined, "c", "a", "b")
}

func TestApplyConstraintsLockLast(t *testing.T) {
	original := scenarioStops()
	tour := NearestNeighborTour(original) // 3, 2, 4, 1

	settings := domain.DefaultOptimizationSettings()
	settings.LockLastDestination = true

	got := ApplyConstraints(tour, original, settings)
	assertIDs(t, got, "3", "2", "1", "4")
	assertPermutation(t, got, original)

	settings.LockLastDestination = false
	settings.RoundTrip = true
	got = ApplyConstraints(tour, original, settings)
	assertIDs(t, got, "3", "2", "4", "1")
}

func TestSequenceLocallyScenario(t *testing.T) {
	stops := scenarioStops()
	got, converged := SequenceLocally(stops, domain.DefaultOptimizationSettings())
	if !converged {
		t.Fatalf("expected convergence")
	}

	assertPermutation(t, got, stops)
	assertIDs(t, got, "3", "2", "4", "1")

	if pathLength(got) > pathLength(stops) {
		t.Fatalf("optimized %v km longer than naive %v km", pathLength(got), pathLength(stops))
	}

	// Stops 1 and 4 share a block and must be visited back to back.
	pos := map[string]int{}
	for i, s := range got {
		pos[s.ID] = i
	}
	if d := pos["1"] - pos["4"]; d != 1 && d != -1 {
		t.Fatalf("stops 1 and 4 not adjacent: %v", ids(got))
	}
}

func TestSequenceLocallyIsIdempotent(t *testing.T) {
	for seed := uint32(1); seed <= 30; seed++ {
		stops := randomStops(3+int(seed%15), seed)
		for _, lock := range []bool{false, true} {
			settings := domain.DefaultOptimizationSettings()
			settings.LockLastDestination = lock

			first, _ := SequenceLocally(stops, settings)
			second, _ := SequenceLocally(first, settings)
			assertIDs(t, second, ids(first)...)
		}
	}
}

func TestSequenceLocallyLockLastAlwaysEndsOnOriginalLast(t *testing.T) {
	settings := domain.DefaultOptimizationSettings()
	settings.LockLastDestination = true

	for seed := uint32(1); seed <= 30; seed++ {
		stops := randomStops(3+int(seed%12), seed)
		got, _ := SequenceLocally(stops, settings)
		if got[len(got)-1].ID != stops[len(stops)-1].ID {
			t.Fatalf("seed %d: last = %s, want %s", seed, got[len(got)-1].ID, stops[len(stops)-1].ID)
		}
	}
}
