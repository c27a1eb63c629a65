package domain

import "fmt"

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnRoute   DriverStatus = "on_route"
	DriverOffline   DriverStatus = "offline"
)

type Driver struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	VehicleID string
	Status    DriverStatus
}

func (d Driver) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: driver name must be non-empty", ErrMalformedInput)
	}
	switch d.Status {
	case DriverAvailable, DriverOnRoute, DriverOffline:
	default:
		return fmt.Errorf("%w: unknown driver status %q", ErrMalformedInput, d.Status)
	}
	return nil
}
