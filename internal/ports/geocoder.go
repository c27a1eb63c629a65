package ports

import (
	"context"
	"stop-sequencing-service/internal/domain"
)

// Port: resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Port: persistent address -> coordinates lookup shared by geocoders.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.Coordinates, bool, error)
	Set(ctx context.Context, address string, coords domain.Coordinates) error
}
