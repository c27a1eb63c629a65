package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/domain"
	"time"
)

// SQLite-backed implementation of the RouteRepository port.
// Stops are stored in route_stops in visiting order.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

// Fixed-width UTC timestamps so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const routeColumns = `
	id, name, status, start_address, start_name, start_lat, start_lon,
	total_distance_meters, total_duration_seconds, vehicle_id, driver_id,
	scheduled_date, created_at, updated_at
`

func (s *SqliteRouteRepository) CreateRoute(ctx context.Context, r *domain.Route) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	startAddr, startName, startLat, startLon := startColumns(r.Start)
	_, err = tx.ExecContext(ctx, `
	INSERT INTO routes (`+routeColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		r.ID, r.Name, string(r.Status), startAddr, startName, startLat, startLon,
		r.TotalDistanceMeters, r.TotalDurationSeconds, r.VehicleID, r.DriverID,
		r.ScheduledDate, r.CreatedAt.UTC().Format(timeLayout), r.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create route id=%s: insert route: %w", r.ID, err)
	}

	if err := insertStops(ctx, tx, r.ID, r.Stops); err != nil {
		return fmt.Errorf("create route id=%s: %w", r.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create route id=%s: commit tx: %w", r.ID, err)
	}
	return nil
}

func (s *SqliteRouteRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?;`, id)
	r, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", id, err)
	}

	stops, err := s.listStops(ctx, `WHERE route_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", id, err)
	}
	r.Stops = stops[id]
	if r.Stops == nil {
		r.Stops = []domain.Stop{}
	}
	return r, nil
}

// Return all routes, most recently updated first.
func (s *SqliteRouteRepository) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY updated_at DESC, id;`)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	stops, err := s.listStops(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	for _, r := range routes {
		r.Stops = stops[r.ID]
		if r.Stops == nil {
			r.Stops = []domain.Stop{}
		}
	}
	return routes, nil
}

// Replace a route and its stops.
func (s *SqliteRouteRepository) UpdateRoute(ctx context.Context, r *domain.Route) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update route id=%s: begin tx: %w", r.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	startAddr, startName, startLat, startLon := startColumns(r.Start)
	res, err := tx.ExecContext(ctx, `
	UPDATE routes SET
		name = ?, status = ?, start_address = ?, start_name = ?, start_lat = ?, start_lon = ?,
		total_distance_meters = ?, total_duration_seconds = ?, vehicle_id = ?, driver_id = ?,
		scheduled_date = ?, updated_at = ?
	WHERE id = ?;
	`,
		r.Name, string(r.Status), startAddr, startName, startLat, startLon,
		r.TotalDistanceMeters, r.TotalDurationSeconds, r.VehicleID, r.DriverID,
		r.ScheduledDate, r.UpdatedAt.UTC().Format(timeLayout), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update route id=%s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update route %q: %w", r.ID, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = ?;`, r.ID); err != nil {
		return fmt.Errorf("update route id=%s: clear stops: %w", r.ID, err)
	}
	if err := insertStops(ctx, tx, r.ID, r.Stops); err != nil {
		return fmt.Errorf("update route id=%s: %w", r.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update route id=%s: commit tx: %w", r.ID, err)
	}
	return nil
}

func (s *SqliteRouteRepository) DeleteRoute(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete route id=%s: begin tx: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Explicit delete; foreign_keys may be off on connections not opened via db.OpenSQLite.
	if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = ?;`, id); err != nil {
		return fmt.Errorf("delete route id=%s: delete stops: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM routes WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete route id=%s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete route %q: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete route id=%s: commit tx: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var (
		r                    domain.Route
		status               string
		startAddr, startNm   sql.NullString
		startLat, startLon   sql.NullFloat64
		createdAt, updatedAt string
	)
	err := row.Scan(
		&r.ID, &r.Name, &status, &startAddr, &startNm, &startLat, &startLon,
		&r.TotalDistanceMeters, &r.TotalDurationSeconds, &r.VehicleID, &r.DriverID,
		&r.ScheduledDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.RouteStatus(status)
	if startLat.Valid && startLon.Valid {
		r.Start = &domain.StartLocation{
			Address:     startAddr.String,
			Name:        startNm.String,
			Coordinates: domain.Coordinates{Lat: startLat.Float64, Lon: startLon.Float64},
		}
	}
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if r.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return &r, nil
}

func startColumns(l *domain.StartLocation) (any, any, any, any) {
	if l == nil {
		return nil, nil, nil, nil
	}
	return l.Address, l.Name, l.Coordinates.Lat, l.Coordinates.Lon
}

func insertStops(ctx context.Context, tx *sql.Tx, routeID string, stops []domain.Stop) error {
	if len(stops) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (
		route_id, position, stop_id, address, name, notes, lat, lon,
		service_time, time_window_start, time_window_end, priority
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert stops: prepare: %w", err)
	}
	defer stmt.Close()

	for i, st := range stops {
		_, err := stmt.ExecContext(ctx,
			routeID, i+1, st.ID, st.Address, st.Name, st.Notes,
			st.Coordinates.Lat, st.Coordinates.Lon, st.ServiceTime,
			st.TimeWindowStart, st.TimeWindowEnd, string(st.Priority),
		)
		if err != nil {
			return fmt.Errorf("insert stops: stop_id=%s: %w", st.ID, err)
		}
	}
	return nil
}

// listStops groups stops by route id. where is an optional WHERE clause.
func (s *SqliteRouteRepository) listStops(ctx context.Context, where string, args ...any) (map[string][]domain.Stop, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT route_id, position, stop_id, address, name, notes, lat, lon,
		service_time, time_window_start, time_window_end, priority
	FROM route_stops `+where+`
	ORDER BY route_id, position;
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query route_stops table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Stop)
	for rows.Next() {
		var (
			routeID  string
			st       domain.Stop
			priority string
		)
		err := rows.Scan(
			&routeID, &st.Sequence, &st.ID, &st.Address, &st.Name, &st.Notes,
			&st.Coordinates.Lat, &st.Coordinates.Lon, &st.ServiceTime,
			&st.TimeWindowStart, &st.TimeWindowEnd, &priority,
		)
		if err != nil {
			return nil, fmt.Errorf("scan route_stops row: %w", err)
		}
		st.Priority = domain.Priority(priority)
		out[routeID] = append(out[routeID], st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route_stops row iteration: %w", err)
	}
	return out, nil
}
