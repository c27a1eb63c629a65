package domain

import "fmt"

type VehicleType string

const (
	VehicleVan        VehicleType = "van"
	VehicleTruck      VehicleType = "truck"
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
)

// Vehicle that can be assigned to a saved route.
// MaxStops of zero means the vehicle has no stop limit.
type Vehicle struct {
	ID               string
	Name             string
	LicensePlate     string
	Type             VehicleType
	CapacityWeightKg float64
	CapacityVolumeM3 float64
	MaxStops         int
	Color            string
}

func (v Vehicle) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: vehicle name must be non-empty", ErrMalformedInput)
	}
	switch v.Type {
	case VehicleVan, VehicleTruck, VehicleCar, VehicleMotorcycle:
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrMalformedInput, v.Type)
	}
	if v.MaxStops < 0 || v.CapacityWeightKg < 0 || v.CapacityVolumeM3 < 0 {
		return fmt.Errorf("%w: vehicle capacities must be non-negative", ErrMalformedInput)
	}
	return nil
}

// CanServe reports an error when a route with stopCount stops exceeds the
// vehicle's stop limit.
func (v Vehicle) CanServe(stopCount int) error {
	if v.MaxStops > 0 && stopCount > v.MaxStops {
		return fmt.Errorf("%w: vehicle %s is at full capacity (max_stops=%d, stops=%d)", ErrMalformedInput, v.ID, v.MaxStops, stopCount)
	}
	return nil
}
