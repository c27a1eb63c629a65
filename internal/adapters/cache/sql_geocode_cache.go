package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a SQL-backed cache mapping addresses to coordinates.
// Address keys are expected to be normalized by the caller.
//
// The same table layout is used on SQLite and Postgres; only the upsert
// statement and placeholder style differ.
type SQLGeocodeCache struct {
	DB        *sql.DB
	selectSQL string
	upsertSQL string
}

func NewSqliteGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{
		DB: db,
		selectSQL: `
	SELECT lon, lat
	FROM geocode_cache
	WHERE address = ?;
	`,
		upsertSQL: `
	INSERT OR REPLACE INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?);
	`,
	}
}

func NewPostgresGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{
		DB: db,
		selectSQL: `
	SELECT lon, lat
	FROM geocode_cache
	WHERE address = $1;
	`,
		upsertSQL: `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`,
	}
}

// Fetch cached coordinates for an address.
func (s *SQLGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false, nil
	}

	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, s.selectSQL, address).Scan(&c.Lon, &c.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	return c, true, nil
}

// Store an address -> coordinate mapping.
func (s *SQLGeocodeCache) Set(ctx context.Context, address string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	if _, err := s.DB.ExecContext(ctx, s.upsertSQL, address, c.Lon, c.Lat); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}
	return nil
}
