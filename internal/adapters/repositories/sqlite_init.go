package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"stop-sequencing-service/internal/domain"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		start_address TEXT,
		start_name TEXT,
		start_lat REAL,
		start_lon REAL,
		total_distance_meters INTEGER NOT NULL DEFAULT 0,
		total_duration_seconds INTEGER NOT NULL DEFAULT 0,
		vehicle_id TEXT NOT NULL DEFAULT '',
		driver_id TEXT NOT NULL DEFAULT '',
		scheduled_date TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		stop_id TEXT NOT NULL,
		address TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		service_time INTEGER NOT NULL DEFAULT 0,
		time_window_start TEXT NOT NULL DEFAULT '',
		time_window_end TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (route_id, position)
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		license_plate TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		capacity_weight_kg REAL NOT NULL DEFAULT 0,
		capacity_volume_m3 REAL NOT NULL DEFAULT 0,
		max_stops INTEGER NOT NULL DEFAULT 0,
		color TEXT NOT NULL DEFAULT ''
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		vehicle_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_updated_at
	ON routes(updated_at);
	`

	statements := []string{
		createRoutesQuery,
		createRouteStopsQuery,
		createVehiclesQuery,
		createDriversQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VehicleSeed struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	LicensePlate     string  `json:"license_plate"`
	Type             string  `json:"type"`
	CapacityWeightKg float64 `json:"capacity_weight_kg"`
	CapacityVolumeM3 float64 `json:"capacity_volume_m3"`
	MaxStops         int     `json:"max_stops"`
	Color            string  `json:"color"`
}

type DriverSeed struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	VehicleID string `json:"vehicle_id"`
	Status    string `json:"status"`
}

type FleetSeed struct {
	Vehicles []VehicleSeed `json:"vehicles"`
	Drivers  []DriverSeed  `json:"drivers"`
}

// Populate the database with vehicles and drivers from a JSON file.
// Existing rows with the same id are replaced.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var data FleetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed fleet: parse json: %w", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(data.Vehicles))
	for i, item := range data.Vehicles {
		v := domain.Vehicle{
			ID:               strings.TrimSpace(item.ID),
			Name:             strings.TrimSpace(item.Name),
			LicensePlate:     item.LicensePlate,
			Type:             domain.VehicleType(item.Type),
			CapacityWeightKg: item.CapacityWeightKg,
			CapacityVolumeM3: item.CapacityVolumeM3,
			MaxStops:         item.MaxStops,
			Color:            item.Color,
		}
		if v.ID == "" {
			return fmt.Errorf("seed fleet: vehicle at index %d: id cannot be empty", i+1)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("seed fleet: vehicle at index %d: %w", i+1, err)
		}
		vehicles = append(vehicles, v)
	}

	drivers := make([]domain.Driver, 0, len(data.Drivers))
	for i, item := range data.Drivers {
		d := domain.Driver{
			ID:        strings.TrimSpace(item.ID),
			Name:      strings.TrimSpace(item.Name),
			Email:     item.Email,
			Phone:     item.Phone,
			VehicleID: item.VehicleID,
			Status:    domain.DriverStatus(item.Status),
		}
		if d.ID == "" {
			return fmt.Errorf("seed fleet: driver at index %d: id cannot be empty", i+1)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("seed fleet: driver at index %d: %w", i+1, err)
		}
		drivers = append(drivers, d)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer tx.Rollback()

	vstmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO vehicles (
		id, name, license_plate, type, capacity_weight_kg, capacity_volume_m3, max_stops, color
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed fleet: prepare vehicle insert: %w", err)
	}
	defer vstmt.Close()

	for _, v := range vehicles {
		if _, err := vstmt.Exec(v.ID, v.Name, v.LicensePlate, string(v.Type), v.CapacityWeightKg, v.CapacityVolumeM3, v.MaxStops, v.Color); err != nil {
			return fmt.Errorf("seed fleet: insert vehicle id=%s: %w", v.ID, err)
		}
	}

	dstmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO drivers (id, name, email, phone, vehicle_id, status)
	VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed fleet: prepare driver insert: %w", err)
	}
	defer dstmt.Close()

	for _, d := range drivers {
		if _, err := dstmt.Exec(d.ID, d.Name, d.Email, d.Phone, d.VehicleID, string(d.Status)); err != nil {
			return fmt.Errorf("seed fleet: insert driver id=%s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}
