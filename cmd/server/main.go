package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
	"visit-route-service/internal/adapters/cache"
	"visit-route-service/internal/adapters/distance"
	"visit-route-service/internal/adapters/repositories"
	"visit-route-service/internal/api"
	"visit-route-service/internal/platform/db"
	"visit-route-service/internal/ports"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, OSRM, the route cache) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	seedPath := getEnv("SEED_PATH", "data/seeds/locations.json")
	port := getEnv("PORT", "8080")
	osrmBaseURL := getEnv("OSRM_BASE_URL", "https://router.project-osrm.org")

	sqlite, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlite.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(sqlite); err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stat(seedPath); err == nil {
		if err := repositories.SeedFromJSON(sqlite, seedPath); err != nil {
			log.Fatal(err)
		}
	}

	routeCache, closeCache, err := buildRouteCache(sqlite)
	if err != nil {
		log.Fatal(err)
	}
	if closeCache != nil {
		defer closeCache()
	}

	// The OSRM provider reuses cached route metrics to avoid re-fetching
	// unchanged combinations.
	roadProvider, err := distance.NewOSRMProvider(osrmBaseURL, routeCache)
	if err != nil {
		log.Fatal(err)
	}
	straightProvider := distance.NewStraightLineProvider()

	repo := repositories.NewSqliteLocationRepository(sqlite)
	router := api.NewRouter(repo, roadProvider, straightProvider)

	// Timeouts are tuned for cold-cache calculation runs (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildRouteCache picks the route-metrics cache backend: Redis when
// REDIS_ADDR is set, Postgres when DATABASE_URL is set, local SQLite
// otherwise.
func buildRouteCache(sqlite *sql.DB) (ports.RouteCache, func() error, error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Printf("route cache backend=redis addr=%s", addr)
		return cache.NewRedisRouteCache(client), client.Close, nil
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("build route cache: %w", err)
		}
		log.Printf("route cache backend=postgres")
		return cache.NewSQLRouteCache(pg), pg.Close, nil
	}

	log.Printf("route cache backend=sqlite")
	return cache.NewSqliteRouteCache(sqlite), nil, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}
