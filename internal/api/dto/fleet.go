package dto

import "stop-sequencing-service/internal/domain"

type Vehicle struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	LicensePlate     string  `json:"license_plate,omitempty"`
	Type             string  `json:"type"`
	CapacityWeightKg float64 `json:"capacity_weight_kg"`
	CapacityVolumeM3 float64 `json:"capacity_volume_m3"`
	MaxStops         int     `json:"max_stops"`
	Color            string  `json:"color,omitempty"`
}

func (v Vehicle) ToDomain() domain.Vehicle {
	return domain.Vehicle{
		ID:               v.ID,
		Name:             v.Name,
		LicensePlate:     v.LicensePlate,
		Type:             domain.VehicleType(v.Type),
		CapacityWeightKg: v.CapacityWeightKg,
		CapacityVolumeM3: v.CapacityVolumeM3,
		MaxStops:         v.MaxStops,
		Color:            v.Color,
	}
}

func VehicleFromDomain(v *domain.Vehicle) Vehicle {
	return Vehicle{
		ID:               v.ID,
		Name:             v.Name,
		LicensePlate:     v.LicensePlate,
		Type:             string(v.Type),
		CapacityWeightKg: v.CapacityWeightKg,
		CapacityVolumeM3: v.CapacityVolumeM3,
		MaxStops:         v.MaxStops,
		Color:            v.Color,
	}
}

type Driver struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	VehicleID string `json:"vehicle_id,omitempty"`
	Status    string `json:"status"`
}

func (d Driver) ToDomain() domain.Driver {
	return domain.Driver{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		VehicleID: d.VehicleID,
		Status:    domain.DriverStatus(d.Status),
	}
}

func DriverFromDomain(d *domain.Driver) Driver {
	return Driver{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		VehicleID: d.VehicleID,
		Status:    string(d.Status),
	}
}

type ListVehiclesResponse struct {
	Vehicles []Vehicle `json:"vehicles"`
}

type ListDriversResponse struct {
	Drivers []Driver `json:"drivers"`
}
