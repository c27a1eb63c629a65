package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/domain"
)

// SQLite-backed implementation of the VehicleRepository and DriverRepository ports.
type SqliteFleetRepository struct{ DB *sql.DB }

func NewSqliteFleetRepository(db *sql.DB) *SqliteFleetRepository {
	return &SqliteFleetRepository{DB: db}
}

func (s *SqliteFleetRepository) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	if s.DB == nil {
		return errors.New("sqlite fleet repository: DB is nil")
	}
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO vehicles (
		id, name, license_plate, type, capacity_weight_kg, capacity_volume_m3, max_stops, color
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, v.ID, v.Name, v.LicensePlate, string(v.Type), v.CapacityWeightKg, v.CapacityVolumeM3, v.MaxStops, v.Color)
	if err != nil {
		return fmt.Errorf("create vehicle id=%s: %w", v.ID, err)
	}
	return nil
}

func (s *SqliteFleetRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite fleet repository: DB is nil")
	}
	row := s.DB.QueryRowContext(ctx, `
	SELECT id, name, license_plate, type, capacity_weight_kg, capacity_volume_m3, max_stops, color
	FROM vehicles
	WHERE id = ?;
	`, id)

	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vehicle %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %q: %w", id, err)
	}
	return v, nil
}

func (s *SqliteFleetRepository) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite fleet repository: DB is nil")
	}
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, license_plate, type, capacity_weight_kg, capacity_volume_m3, max_stops, color
	FROM vehicles
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 16)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}
	return vehicles, nil
}

func (s *SqliteFleetRepository) UpdateVehicle(ctx context.Context, v *domain.Vehicle) error {
	if s.DB == nil {
		return errors.New("sqlite fleet repository: DB is nil")
	}
	res, err := s.DB.ExecContext(ctx, `
	UPDATE vehicles SET
		name = ?, license_plate = ?, type = ?, capacity_weight_kg = ?,
		capacity_volume_m3 = ?, max_stops = ?, color = ?
	WHERE id = ?;
	`, v.Name, v.LicensePlate, string(v.Type), v.CapacityWeightKg, v.CapacityVolumeM3, v.MaxStops, v.Color, v.ID)
	if err != nil {
		return fmt.Errorf("update vehicle id=%s: %w", v.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update vehicle %q: %w", v.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete a vehicle and clear references to it from routes and drivers.
func (s *SqliteFleetRepository) DeleteVehicle(ctx context.Context, id string) error {
	return s.deleteWithRefs(ctx, "vehicles", id,
		`UPDATE routes SET vehicle_id = '' WHERE vehicle_id = ?;`,
		`UPDATE drivers SET vehicle_id = '' WHERE vehicle_id = ?;`,
	)
}

func (s *SqliteFleetRepository) CreateDriver(ctx context.Context, d *domain.Driver) error {
	if s.DB == nil {
		return errors.New("sqlite fleet repository: DB is nil")
	}
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO drivers (id, name, email, phone, vehicle_id, status)
	VALUES (?, ?, ?, ?, ?, ?);
	`, d.ID, d.Name, d.Email, d.Phone, d.VehicleID, string(d.Status))
	if err != nil {
		return fmt.Errorf("create driver id=%s: %w", d.ID, err)
	}
	return nil
}

func (s *SqliteFleetRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite fleet repository: DB is nil")
	}
	row := s.DB.QueryRowContext(ctx, `
	SELECT id, name, email, phone, vehicle_id, status
	FROM drivers
	WHERE id = ?;
	`, id)

	d, err := scanDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get driver %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %q: %w", id, err)
	}
	return d, nil
}

func (s *SqliteFleetRepository) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite fleet repository: DB is nil")
	}
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, email, phone, vehicle_id, status
	FROM drivers
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return drivers, nil
}

func (s *SqliteFleetRepository) UpdateDriver(ctx context.Context, d *domain.Driver) error {
	if s.DB == nil {
		return errors.New("sqlite fleet repository: DB is nil")
	}
	res, err := s.DB.ExecContext(ctx, `
	UPDATE drivers SET name = ?, email = ?, phone = ?, vehicle_id = ?, status = ?
	WHERE id = ?;
	`, d.Name, d.Email, d.Phone, d.VehicleID, string(d.Status), d.ID)
	if err != nil {
		return fmt.Errorf("update driver id=%s: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update driver %q: %w", d.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete a driver and clear references to it from routes.
func (s *SqliteFleetRepository) DeleteDriver(ctx context.Context, id string) error {
	return s.deleteWithRefs(ctx, "drivers", id,
		`UPDATE routes SET driver_id = '' WHERE driver_id = ?;`,
	)
}

// table is always a package constant, never user input.
func (s *SqliteFleetRepository) deleteWithRefs(ctx context.Context, table, id string, clearRefs ...string) error {
	if s.DB == nil {
		return errors.New("sqlite fleet repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete %s id=%s: begin tx: %w", table, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete %s id=%s: %w", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s %q: %w", table, id, domain.ErrNotFound)
	}

	for _, q := range clearRefs {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete %s id=%s: clear references: %w", table, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete %s id=%s: commit tx: %w", table, id, err)
	}
	return nil
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	var typ string
	if err := row.Scan(&v.ID, &v.Name, &v.LicensePlate, &typ, &v.CapacityWeightKg, &v.CapacityVolumeM3, &v.MaxStops, &v.Color); err != nil {
		return nil, err
	}
	v.Type = domain.VehicleType(typ)
	return &v, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var status string
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.VehicleID, &status); err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	return &d, nil
}
