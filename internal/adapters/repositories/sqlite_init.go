package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
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

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		route_id TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		weekday TEXT NOT NULL,
		frequency TEXT NOT NULL DEFAULT '',
		visit_minutes INTEGER NOT NULL DEFAULT 0,
		ranks TEXT NOT NULL DEFAULT '{}'
	);
	`

	createStartPointsQuery := `
	CREATE TABLE IF NOT EXISTS start_points (
		route_id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		metrics TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_locations_route_weekday
	ON locations(route_id, weekday);
	`

	statements := []string{
		createLocationsQuery,
		createStartPointsQuery,
		createRouteCacheQuery,
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

type LocationSeed struct {
	LocationID   string         `json:"location_id"`
	Name         string         `json:"name"`
	RouteID      string         `json:"route_id"`
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	Weekday      string         `json:"weekday"`
	Frequency    string         `json:"frequency"`
	VisitMinutes int            `json:"visit_minutes"`
	Ranks        map[string]int `json:"ranks"`
}

type StartPointSeed struct {
	RouteID string  `json:"route_id"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type SeedFile struct {
	Locations   []LocationSeed   `json:"locations"`
	StartPoints []StartPointSeed `json:"start_points"`
}

// Populate the database with location and start-point data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed locations: parse json: %w", err)
	}

	for i, item := range data.Locations {
		if strings.TrimSpace(item.LocationID) == "" {
			return fmt.Errorf("seed locations: empty location_id at index %d", i+1)
		}
		if strings.TrimSpace(item.RouteID) == "" {
			return fmt.Errorf("seed locations: location %q: route_id cannot be empty", item.LocationID)
		}
	}

	for i, item := range data.StartPoints {
		if strings.TrimSpace(item.RouteID) == "" {
			return fmt.Errorf("seed locations: empty start point route_id at index %d", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	locStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO locations (
		location_id,
		name,
		route_id,
		lat,
		lon,
		weekday,
		frequency,
		visit_minutes,
		ranks
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed locations: prepare location insert: %w", err)
	}
	defer locStmt.Close()

	for _, item := range data.Locations {
		ranksJSON := "{}"
		if len(item.Ranks) > 0 {
			b, err := json.Marshal(item.Ranks)
			if err != nil {
				return fmt.Errorf("seed locations: encode ranks for %q: %w", item.LocationID, err)
			}
			ranksJSON = string(b)
		}

		_, err := locStmt.Exec(
			item.LocationID,
			item.Name,
			item.RouteID,
			item.Lat,
			item.Lon,
			item.Weekday,
			item.Frequency,
			item.VisitMinutes,
			ranksJSON,
		)
		if err != nil {
			return fmt.Errorf("seed locations: insert location_id=%q: %w", item.LocationID, err)
		}
	}

	spStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO start_points (route_id, address, lat, lon)
	VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed locations: prepare start point insert: %w", err)
	}
	defer spStmt.Close()

	for _, item := range data.StartPoints {
		if _, err := spStmt.Exec(item.RouteID, item.Address, item.Lat, item.Lon); err != nil {
			return fmt.Errorf("seed locations: insert start point route_id=%q: %w", item.RouteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}
