package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"stop-sequencing-service/internal/adapters/cache"
	"stop-sequencing-service/internal/adapters/importer"
	"stop-sequencing-service/internal/adapters/repositories"
	"stop-sequencing-service/internal/adapters/routing"
	"stop-sequencing-service/internal/adapters/sessions"
	"stop-sequencing-service/internal/api"
	"stop-sequencing-service/internal/config"
	"stop-sequencing-service/internal/platform/db"
	"stop-sequencing-service/internal/ports"
	"stop-sequencing-service/internal/services"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, route oracle, caches) behind ports and
// starts the HTTP server.
func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	oracle, geocoder, closeOracle, err := buildOracle(cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer closeOracle()

	routeRepo := repositories.NewSqliteRouteRepository(conn)
	fleetRepo := repositories.NewSqliteFleetRepository(conn)
	optimizer := services.NewOptimizer(oracle, cfg.OracleTimeout)

	router := api.NewRouter(api.Deps{
		Sessions:       services.NewSessionService(sessions.NewMemoryStore(cfg.SessionTTL), optimizer),
		Routes:         services.NewRouteService(routeRepo, fleetRepo, fleetRepo),
		Fleet:          services.NewFleetService(fleetRepo, fleetRepo),
		Importer:       importer.NewCSVImporter(geocoder),
		Geocoder:       geocoder,
		OracleName:     cfg.OracleProvider,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Write timeout leaves room for a full oracle timeout plus geocoding on import.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s oracle=%s", cfg.Port, cfg.OracleProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
}

// buildOracle returns the configured route oracle and geocoder, either of
// which may be nil. ORS results are cached in Redis when REDIS_URL is set.
// The returned func releases the connections opened here.
func buildOracle(cfg config.Config, conn *sql.DB) (ports.RouteOracle, ports.Geocoder, func(), error) {
	var (
		oracle   ports.RouteOracle
		geocoder ports.Geocoder
		closers  []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	switch cfg.OracleProvider {
	case config.OracleORS:
		geoCache, closeCache, err := openGeocodeCache(cfg, conn)
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("build oracle: %w", err)
		}
		closers = append(closers, closeCache)

		ors, err := routing.NewORSProvider(cfg.ORSAPIKey, cfg.ORSBaseURL, geoCache)
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("build oracle: %w", err)
		}
		oracle, geocoder = ors, ors
	case config.OracleOSRM:
		oracle = routing.NewOSRMProvider(cfg.OSRMBaseURL)
	default:
		log.Println("No route oracle configured (using local sequencing only)")
		return nil, nil, closeAll, nil
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("build oracle: parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		closers = append(closers, func() { client.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping failed (oracle cache will pass through): %v", err)
		}
		oracle = cache.NewRedisRouteCache(oracle, client, cfg.OracleCacheTTL)
	}
	return oracle, geocoder, closeAll, nil
}

// Geocodes persist in Postgres when DATABASE_URL is set, so several
// instances share them; otherwise in the local SQLite file.
func openGeocodeCache(cfg config.Config, conn *sql.DB) (ports.GeocodeCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.NewSqliteGeocodeCache(conn), func() {}, nil
	}

	pg, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cache.InitPostgresSchema(ctx, pg); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return cache.NewPostgresGeocodeCache(pg), func() { pg.Close() }, nil
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("No seed file at %s (skipping fleet seed)", seedPath)
		return nil
	}
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
