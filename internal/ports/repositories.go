package ports

import (
	"context"
	"stop-sequencing-service/internal/domain"
)

// Port: storage for saved routes. Get returns domain.ErrNotFound for unknown ids.
type RouteRepository interface {
	CreateRoute(ctx context.Context, r *domain.Route) error
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
	UpdateRoute(ctx context.Context, r *domain.Route) error
	DeleteRoute(ctx context.Context, id string) error
}

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *domain.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

type DriverRepository interface {
	CreateDriver(ctx context.Context, d *domain.Driver) error
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
	UpdateDriver(ctx context.Context, d *domain.Driver) error
	DeleteDriver(ctx context.Context, id string) error
}
