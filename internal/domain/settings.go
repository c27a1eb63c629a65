package domain

import "fmt"

type OptimizationType string

const (
	OptimizeShortestTime     OptimizationType = "shortest_time"
	OptimizeShortestDistance OptimizationType = "shortest_distance"
	OptimizeBalanced         OptimizationType = "balanced"
)

func (t OptimizationType) Valid() bool {
	switch t {
	case OptimizeShortestTime, OptimizeShortestDistance, OptimizeBalanced:
		return true
	}
	return false
}

// OptimizationSettings is pure configuration read by the optimizer.
//
// The local heuristic always minimizes straight-line distance; OptimizationType
// and the avoid flags are forwarded to the route oracle when one is used.
type OptimizationSettings struct {
	OptimizationType    OptimizationType
	RoundTrip           bool
	LockLastDestination bool
	AvoidHighways       bool
	AvoidTolls          bool
	MaxStops            Optional[int]
	MaxDistanceKm       Optional[float64]
	DefaultServiceTime  int // minutes
}

func DefaultOptimizationSettings() OptimizationSettings {
	return OptimizationSettings{
		OptimizationType:   OptimizeShortestTime,
		DefaultServiceTime: 5,
	}
}

func (s OptimizationSettings) Validate() error {
	if !s.OptimizationType.Valid() {
		return fmt.Errorf("%w: unknown optimization type %q", ErrMalformedInput, s.OptimizationType)
	}
	if v, ok := s.MaxStops.Get(); ok && v < 1 {
		return fmt.Errorf("%w: max stops must be positive, got %d", ErrMalformedInput, v)
	}
	if v, ok := s.MaxDistanceKm.Get(); ok && v <= 0 {
		return fmt.Errorf("%w: max distance must be positive, got %v", ErrMalformedInput, v)
	}
	if s.DefaultServiceTime < 0 {
		return fmt.Errorf("%w: default service time must be non-negative", ErrMalformedInput)
	}
	return nil
}

// SettingsUpdate is a partial settings change. The Clear flags remove an
// optional limit; they win over a value set in the same update.
type SettingsUpdate struct {
	OptimizationType    Optional[OptimizationType]
	RoundTrip           Optional[bool]
	LockLastDestination Optional[bool]
	AvoidHighways       Optional[bool]
	AvoidTolls          Optional[bool]
	MaxStops            Optional[int]
	ClearMaxStops       bool
	MaxDistanceKm       Optional[float64]
	ClearMaxDistance    bool
	DefaultServiceTime  Optional[int]
}

func (u SettingsUpdate) Apply(s OptimizationSettings) OptimizationSettings {
	if v, ok := u.OptimizationType.Get(); ok {
		s.OptimizationType = v
	}
	if v, ok := u.RoundTrip.Get(); ok {
		s.RoundTrip = v
	}
	if v, ok := u.LockLastDestination.Get(); ok {
		s.LockLastDestination = v
	}
	if v, ok := u.AvoidHighways.Get(); ok {
		s.AvoidHighways = v
	}
	if v, ok := u.AvoidTolls.Get(); ok {
		s.AvoidTolls = v
	}
	if u.MaxStops.IsSet() {
		s.MaxStops = u.MaxStops
	}
	if u.ClearMaxStops {
		s.MaxStops = None[int]()
	}
	if u.MaxDistanceKm.IsSet() {
		s.MaxDistanceKm = u.MaxDistanceKm
	}
	if u.ClearMaxDistance {
		s.MaxDistanceKm = None[float64]()
	}
	if v, ok := u.DefaultServiceTime.Get(); ok {
		s.DefaultServiceTime = v
	}
	return s
}
