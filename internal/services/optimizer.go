package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
	"time"
)

// Default bound on a single route oracle call before falling back.
const DefaultOracleTimeout = 5 * time.Second

// ErrInternal reports a broken pipeline invariant. It is never expected on
// validated input.
var ErrInternal = errors.New("internal optimizer error")

type OptimizeRequest struct {
	Stops    []domain.Stop
	Start    *domain.StartLocation
	Settings domain.OptimizationSettings
}

// Optimizer orders stops, preferring the route oracle and falling back to the
// local heuristic pipeline. It holds no per-call state and is safe for
// concurrent use.
type Optimizer struct {
	oracle  ports.RouteOracle
	timeout time.Duration
}

// oracle may be nil; every call then takes the local path.
func NewOptimizer(oracle ports.RouteOracle, timeout time.Duration) *Optimizer {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &Optimizer{oracle: oracle, timeout: timeout}
}

// ValidateRequest checks a request without optimizing it.
func ValidateRequest(req OptimizeRequest) error {
	if err := domain.ValidateStops(req.Stops); err != nil {
		return err
	}
	if req.Start != nil {
		if err := req.Start.Validate(); err != nil {
			return err
		}
	}
	if err := req.Settings.Validate(); err != nil {
		return err
	}
	if limit, ok := req.Settings.MaxStops.Get(); ok && len(req.Stops) > limit {
		return fmt.Errorf("%w: %d stops exceeds max stops %d", domain.ErrMalformedInput, len(req.Stops), limit)
	}
	return nil
}

// Optimize returns a new ordering of req.Stops. The input slice is never
// modified. A non-nil error means the call Failed and no result is returned;
// otherwise the result State is Success or Fallback.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (res *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	if err := ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("optimize: validate request: %w", err)
	}

	if len(req.Stops) <= 2 {
		return &domain.OptimizationResult{
			Stops: domain.Resequence(req.Stops),
			State: domain.StateSuccess,
		}, nil
	}

	if o.oracle != nil && req.Start != nil {
		res, oerr := o.optimizeWithOracle(ctx, req)
		if oerr == nil {
			o.addWarnings(res, req)
			return res, nil
		}
		log.Printf("req_id=%s op=optimizer.Optimize fallback=local stops=%d reason=%v", obs.RequestID(ctx), len(req.Stops), oerr)
	}

	ordered, converged := SequenceLocally(req.Stops, req.Settings)
	if !isPermutation(ordered, req.Stops) || !isContiguousSequence(ordered) {
		return nil, fmt.Errorf("optimize: local pipeline: %w: output is not a permutation of %d stops", ErrInternal, len(req.Stops))
	}

	res = &domain.OptimizationResult{
		Stops: ordered,
		State: domain.StateFallback,
	}
	if !converged {
		res.Warnings = append(res.Warnings, fmt.Sprintf("2-opt stopped after %d passes; tour may be improvable", TwoOptMaxPasses))
	}
	o.addWarnings(res, req)
	return res, nil
}

func (o *Optimizer) optimizeWithOracle(ctx context.Context, req OptimizeRequest) (*domain.OptimizationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	coords := make([]domain.Coordinates, len(req.Stops))
	for i, s := range req.Stops {
		coords[i] = s.Coordinates
	}

	out, err := o.oracle.Optimize(ctx, ports.OracleRequest{
		Start: req.Start.Coordinates,
		Stops: coords,
		Options: ports.OracleOptions{
			AvoidHighways:    req.Settings.AvoidHighways,
			AvoidTolls:       req.Settings.AvoidTolls,
			RoundTrip:        req.Settings.RoundTrip,
			LockLast:         req.Settings.LockLastDestination,
			OptimizationType: req.Settings.OptimizationType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("route oracle: %w", err)
	}

	if !validOrder(out.Order, len(req.Stops)) {
		return nil, fmt.Errorf("route oracle: %w: order %v is not a permutation of %d stops", ports.ErrOracleEmptyResult, out.Order, len(req.Stops))
	}
	if req.Settings.LockLastDestination && out.Order[len(out.Order)-1] != len(req.Stops)-1 {
		return nil, fmt.Errorf("route oracle: order does not end on the locked last stop")
	}

	ordered := make([]domain.Stop, len(out.Order))
	for i, idx := range out.Order {
		ordered[i] = req.Stops[idx]
	}

	return &domain.OptimizationResult{
		Stops:            domain.Resequence(ordered),
		TotalDistanceKm:  domain.Some(out.TotalDistanceKm),
		TotalDurationMin: domain.Some(out.TotalDurationMin),
		Geometry:         out.Geometry,
		State:            domain.StateSuccess,
	}, nil
}

func validOrder(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func (o *Optimizer) addWarnings(res *domain.OptimizationResult, req OptimizeRequest) {
	limit, ok := req.Settings.MaxDistanceKm.Get()
	if !ok {
		return
	}
	dist, ok := res.TotalDistanceKm.Get()
	if !ok {
		dist = geo.PathLengthKm(RoutePath(req.Start, res.Stops, req.Settings.RoundTrip))
	}
	if dist > limit {
		res.Warnings = append(res.Warnings, fmt.Sprintf("route distance %.2f km exceeds max distance %.2f km", dist, limit))
	}
}
