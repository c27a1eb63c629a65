package services

import (
	"context"
	"fmt"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/ports"
	"strings"

	"github.com/google/uuid"
)

// FleetService manages vehicles and drivers.
type FleetService struct {
	vehicles ports.VehicleRepository
	drivers  ports.DriverRepository
}

func NewFleetService(vehicles ports.VehicleRepository, drivers ports.DriverRepository) *FleetService {
	return &FleetService{vehicles: vehicles, drivers: drivers}
}

func (svc *FleetService) CreateVehicle(ctx context.Context, v domain.Vehicle) (*domain.Vehicle, error) {
	v.ID = uuid.NewString()
	v.Name = strings.TrimSpace(v.Name)
	if v.Type == "" {
		v.Type = domain.VehicleCar
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	if err := svc.vehicles.CreateVehicle(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (svc *FleetService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return svc.vehicles.GetVehicle(ctx, id)
}

func (svc *FleetService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return svc.vehicles.ListVehicles(ctx)
}

func (svc *FleetService) UpdateVehicle(ctx context.Context, v domain.Vehicle) (*domain.Vehicle, error) {
	v.Name = strings.TrimSpace(v.Name)
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	if err := svc.vehicles.UpdateVehicle(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (svc *FleetService) DeleteVehicle(ctx context.Context, id string) error {
	return svc.vehicles.DeleteVehicle(ctx, id)
}

func (svc *FleetService) CreateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	d.ID = uuid.NewString()
	d.Name = strings.TrimSpace(d.Name)
	if d.Status == "" {
		d.Status = domain.DriverAvailable
	}
	if err := svc.validateDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	if err := svc.drivers.CreateDriver(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (svc *FleetService) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	return svc.drivers.GetDriver(ctx, id)
}

func (svc *FleetService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return svc.drivers.ListDrivers(ctx)
}

func (svc *FleetService) UpdateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := svc.validateDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}
	if err := svc.drivers.UpdateDriver(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (svc *FleetService) DeleteDriver(ctx context.Context, id string) error {
	return svc.drivers.DeleteDriver(ctx, id)
}

func (svc *FleetService) validateDriver(ctx context.Context, d domain.Driver) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.VehicleID != "" {
		if _, err := svc.vehicles.GetVehicle(ctx, d.VehicleID); err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}
	}
	return nil
}
