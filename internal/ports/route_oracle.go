package ports

import (
	"context"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/domain"
)

var (
	ErrOracleNotConfigured = errors.New("route oracle not configured")
	ErrOracleNetwork       = errors.New("route oracle network error")
	ErrOracleEmptyResult   = errors.New("route oracle returned no route")
)

// UpstreamError is a non-2xx answer from a routing backend.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// Options forwarded to the routing backend.
type OracleOptions struct {
	AvoidHighways    bool
	AvoidTolls       bool
	RoundTrip        bool
	LockLast         bool
	OptimizationType domain.OptimizationType
}

type OracleRequest struct {
	Start   domain.Coordinates
	Stops   []domain.Coordinates
	Options OracleOptions
}

// OracleResult holds the visiting order as indexes into OracleRequest.Stops.
type OracleResult struct {
	Order            []int
	TotalDistanceKm  float64
	TotalDurationMin float64
	Geometry         []domain.Coordinates
}

// Port: an external service that orders stops over a real road network.
type RouteOracle interface {
	Optimize(ctx context.Context, req OracleRequest) (OracleResult, error)
}
