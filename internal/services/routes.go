package services

import (
	"context"
	"fmt"
	"math"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RouteService manages saved routes and their vehicle and driver assignments.
type RouteService struct {
	routes   ports.RouteRepository
	vehicles ports.VehicleRepository
	drivers  ports.DriverRepository
	now      func() time.Time
}

func NewRouteService(routes ports.RouteRepository, vehicles ports.VehicleRepository, drivers ports.DriverRepository) *RouteService {
	return &RouteService{
		routes:   routes,
		vehicles: vehicles,
		drivers:  drivers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RouteInput struct {
	Name          string
	Stops         []domain.StopInput
	Start         *domain.StartLocation
	VehicleID     string
	DriverID      string
	ScheduledDate string
}

type RouteUpdate struct {
	Name          domain.Optional[string]
	Stops         domain.Optional[[]domain.StopInput]
	Status        domain.Optional[domain.RouteStatus]
	VehicleID     domain.Optional[string]
	DriverID      domain.Optional[string]
	ScheduledDate domain.Optional[string]
}

// Build stops for a stored route. Stops keep their ids when given.
func buildStops(inputs []domain.StopInput) ([]domain.Stop, error) {
	stops := make([]domain.Stop, 0, len(inputs))
	for _, in := range inputs {
		s := in.ToStop(0)
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		stops = append(stops, s)
	}
	if err := domain.ValidateStops(stops); err != nil {
		return nil, err
	}
	return domain.Resequence(stops), nil
}

func validateScheduledDate(d string) error {
	if d == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", d); err != nil {
		return fmt.Errorf("%w: scheduled date %q must be YYYY-MM-DD", domain.ErrMalformedInput, d)
	}
	return nil
}

func (svc *RouteService) CreateRoute(ctx context.Context, in RouteInput) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.CreateRoute")(&err)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("create route: %w: name must be non-empty", domain.ErrMalformedInput)
	}
	if err := validateScheduledDate(in.ScheduledDate); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	stops, err := buildStops(in.Stops)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	if in.Start != nil {
		if err := in.Start.Validate(); err != nil {
			return nil, fmt.Errorf("create route: %w", err)
		}
	}

	now := svc.now()
	r := &domain.Route{
		ID:            uuid.NewString(),
		Name:          name,
		Stops:         stops,
		Start:         in.Start,
		Status:        domain.RouteDraft,
		ScheduledDate: in.ScheduledDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := svc.checkAssignment(ctx, in.VehicleID, in.DriverID, len(stops)); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	r.VehicleID, r.DriverID = in.VehicleID, in.DriverID

	if err := svc.routes.CreateRoute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (svc *RouteService) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	return svc.routes.GetRoute(ctx, id)
}

func (svc *RouteService) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	return svc.routes.ListRoutes(ctx)
}

func (svc *RouteService) DeleteRoute(ctx context.Context, id string) error {
	return svc.routes.DeleteRoute(ctx, id)
}

func (svc *RouteService) UpdateRoute(ctx context.Context, id string, u RouteUpdate) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.UpdateRoute")(&err)

	r, err := svc.routes.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := u.Name.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("update route: %w: name must be non-empty", domain.ErrMalformedInput)
		}
		r.Name = strings.TrimSpace(v)
	}
	if v, ok := u.Stops.Get(); ok {
		stops, err := buildStops(v)
		if err != nil {
			return nil, fmt.Errorf("update route: %w", err)
		}
		r.Stops = stops
		// Edited stops no longer match the stored totals.
		r.TotalDistanceMeters, r.TotalDurationSeconds = 0, 0
		if r.Status == domain.RouteOptimized {
			r.Status = domain.RouteDraft
		}
	}
	if v, ok := u.Status.Get(); ok {
		if !v.Valid() {
			return nil, fmt.Errorf("update route: %w: unknown status %q", domain.ErrMalformedInput, v)
		}
		r.Status = v
	}
	if v, ok := u.ScheduledDate.Get(); ok {
		if err := validateScheduledDate(v); err != nil {
			return nil, fmt.Errorf("update route: %w", err)
		}
		r.ScheduledDate = v
	}
	r.VehicleID = u.VehicleID.OrElse(r.VehicleID)
	r.DriverID = u.DriverID.OrElse(r.DriverID)

	if err := svc.checkAssignment(ctx, r.VehicleID, r.DriverID, len(r.Stops)); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	r.UpdatedAt = svc.now()
	if err := svc.routes.UpdateRoute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AssignVehicle sets the route's vehicle. An empty vehicleID unassigns.
func (svc *RouteService) AssignVehicle(ctx context.Context, routeID, vehicleID string) (*domain.Route, error) {
	return svc.UpdateRoute(ctx, routeID, RouteUpdate{VehicleID: domain.Some(vehicleID)})
}

// AssignDriver sets the route's driver. An empty driverID unassigns.
func (svc *RouteService) AssignDriver(ctx context.Context, routeID, driverID string) (*domain.Route, error) {
	return svc.UpdateRoute(ctx, routeID, RouteUpdate{DriverID: domain.Some(driverID)})
}

func (svc *RouteService) checkAssignment(ctx context.Context, vehicleID, driverID string, stopCount int) error {
	if vehicleID != "" {
		v, err := svc.vehicles.GetVehicle(ctx, vehicleID)
		if err != nil {
			return fmt.Errorf("assign vehicle: %w", err)
		}
		if err := v.CanServe(stopCount); err != nil {
			return fmt.Errorf("assign vehicle: %w", err)
		}
	}
	if driverID != "" {
		if _, err := svc.drivers.GetDriver(ctx, driverID); err != nil {
			return fmt.Errorf("assign driver: %w", err)
		}
	}
	return nil
}

// SaveSession stores the session's tour as a route. A session loaded from a
// route, or saved before, updates that route; otherwise a new one is created.
// The route is marked optimized when the tour is the result of an optimization.
func (svc *RouteService) SaveSession(ctx context.Context, s *Session, name string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.SaveSession")(&err)

	snap := s.Snapshot()
	if snap.IsOptimizing {
		return nil, fmt.Errorf("save session: %w", ErrOptimizationInFlight)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = snap.RouteName
	}
	if name == "" {
		return nil, fmt.Errorf("save session: %w: name must be non-empty", domain.ErrMalformedInput)
	}

	var distKm, durMin domain.Optional[float64]
	status := domain.RouteDraft
	if snap.LastResult != nil {
		status = domain.RouteOptimized
		distKm, durMin = snap.LastResult.TotalDistanceKm, snap.LastResult.TotalDurationMin
	}
	stats := EstimateRouteStats(snap.Start, snap.Stops, snap.Settings, distKm, durMin)

	now := svc.now()
	r := &domain.Route{
		ID:                   snap.RouteID,
		Name:                 name,
		Stops:                snap.Stops,
		Start:                snap.Start,
		Status:               status,
		TotalDistanceMeters:  int(math.Round(stats.TotalDistanceKm * 1000)),
		TotalDurationSeconds: int(math.Round(stats.TotalMinutes * 60)),
		UpdatedAt:            now,
	}

	if r.ID != "" {
		existing, err := svc.routes.GetRoute(ctx, r.ID)
		switch {
		case err == nil:
			r.CreatedAt = existing.CreatedAt
			r.VehicleID, r.DriverID, r.ScheduledDate = existing.VehicleID, existing.DriverID, existing.ScheduledDate
			if err := svc.routes.UpdateRoute(ctx, r); err != nil {
				return nil, fmt.Errorf("save session: %w", err)
			}
			s.setRoute(r.ID, r.Name)
			return r, nil
		case !isNotFound(err):
			return nil, fmt.Errorf("save session: %w", err)
		}
		// The route was deleted since it was loaded; save as new.
	}

	r.ID = uuid.NewString()
	r.CreatedAt = now
	if err := svc.routes.CreateRoute(ctx, r); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.setRoute(r.ID, r.Name)
	return r, nil
}

// LoadIntoSession replaces the session contents with a saved route.
func (svc *RouteService) LoadIntoSession(ctx context.Context, routeID string, s *Session) (*domain.Route, error) {
	r, err := svc.routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if err := s.Load(r); err != nil {
		return nil, fmt.Errorf("load route %q: %w", routeID, err)
	}
	return r, nil
}
