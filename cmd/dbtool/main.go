package main

import (
	"context"
	"database/sql"
	"log"
	"stop-sequencing-service/internal/adapters/cache"
	"stop-sequencing-service/internal/adapters/repositories"
	"stop-sequencing-service/internal/config"
	"stop-sequencing-service/internal/platform/db"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// dbtool prepares storage ahead of a deploy: the SQLite route store with its
// fleet seed, and the shared Postgres geocode cache when DATABASE_URL is set.
func main() {
	config.LoadDotEnv()

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/fleet.json")

	conn, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(conn, seedPath)

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Println("DATABASE_URL not set (skipping Postgres geocode cache)")
		return
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Initializing Postgres geocode cache...")
	if err := cache.InitPostgresSchema(ctx, pg); err != nil {
		log.Fatalf("postgres schema initialization failed: %v", err)
	}
	log.Println("Postgres geocode cache ready.")
}

func initAndSeed(conn *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding fleet...")
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
