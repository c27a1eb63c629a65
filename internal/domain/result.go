package domain

// OptimizationState tracks one optimize invocation.
//
//	Idle -> Optimizing -> {Success, Fallback, Failed}
type OptimizationState string

const (
	StateIdle       OptimizationState = "idle"
	StateOptimizing OptimizationState = "optimizing"
	StateSuccess    OptimizationState = "success"
	StateFallback   OptimizationState = "fallback"
	StateFailed     OptimizationState = "failed"
)

// OptimizationResult is the output of one optimize call.
// Distance, duration and geometry are only present when the route oracle
// produced the order; callers estimate from straight-line distance otherwise.
type OptimizationResult struct {
	Stops            []Stop
	TotalDistanceKm  Optional[float64]
	TotalDurationMin Optional[float64]
	Geometry         []Coordinates
	State            OptimizationState
	Warnings         []string
}

// RouteStats summarizes a tour for display.
type RouteStats struct {
	TotalDistanceKm float64
	TravelMinutes   float64
	ServiceMinutes  int
	TotalMinutes    float64
	TotalStops      int
	AvgStopMinutes  float64
	Estimated       bool
}
