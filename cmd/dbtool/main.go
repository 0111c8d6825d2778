package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"visit-route-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares the shared Postgres database used by multi-instance
// deployments: today that is the route-metrics cache table.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	log.Println("Initializing route cache schema...")
	if err := initRouteCacheSchema(pg); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}

func initRouteCacheSchema(pg *sql.DB) error {
	q := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		metrics JSONB NOT NULL
	);
	`
	if _, err := pg.Exec(q); err != nil {
		return fmt.Errorf("init route cache schema: %w", err)
	}

	return nil
}
