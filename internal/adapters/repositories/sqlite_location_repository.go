package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"visit-route-service/internal/domain"
)

// SQLite-backed implementation of the LocationRepository port.
//
// Per-slot visit ranks are stored as a JSON object in the ranks column so
// the read-all/replace-all contract moves each location as one row.
type SqliteLocationRepository struct{ DB *sql.DB }

func NewSqliteLocationRepository(db *sql.DB) *SqliteLocationRepository {
	return &SqliteLocationRepository{DB: db}
}

// Return all locations stored in the database.
func (s *SqliteLocationRepository) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite location repository: DB is nil")
	}

	query := `
	SELECT
		location_id,
		name,
		route_id,
		lat,
		lon,
		weekday,
		frequency,
		visit_minutes,
		ranks
	FROM locations
	ORDER BY location_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0, 64)
	for rows.Next() {
		var loc domain.Location
		var ranksJSON string
		err := rows.Scan(
			&loc.ID,
			&loc.Name,
			&loc.RouteID,
			&loc.Coord.Lat,
			&loc.Coord.Lon,
			&loc.Weekday,
			&loc.Frequency,
			&loc.VisitMinutes,
			&ranksJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}

		if ranksJSON != "" && ranksJSON != "{}" {
			if err := json.Unmarshal([]byte(ranksJSON), &loc.Ranks); err != nil {
				return nil, fmt.Errorf("list locations: decode ranks for %q: %w", loc.ID, err)
			}
		}

		locations = append(locations, &loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locations, nil
}

// Replace the full location set in a single transaction.
func (s *SqliteLocationRepository) ReplaceLocations(ctx context.Context, locations []*domain.Location) error {
	if s.DB == nil {
		return errors.New("sqlite location repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations;`); err != nil {
		return fmt.Errorf("replace locations: clear locations table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO locations (
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
		return fmt.Errorf("replace locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		if loc.ID == "" {
			return errors.New("replace locations: location with empty id")
		}

		ranksJSON := "{}"
		if len(loc.Ranks) > 0 {
			b, err := json.Marshal(loc.Ranks)
			if err != nil {
				return fmt.Errorf("replace locations: encode ranks for %q: %w", loc.ID, err)
			}
			ranksJSON = string(b)
		}

		_, err := stmt.ExecContext(ctx,
			loc.ID,
			loc.Name,
			loc.RouteID,
			loc.Coord.Lat,
			loc.Coord.Lon,
			loc.Weekday,
			loc.Frequency,
			loc.VisitMinutes,
			ranksJSON,
		)
		if err != nil {
			return fmt.Errorf("replace locations: insert location_id=%q: %w", loc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace locations: commit tx: %w", err)
	}

	return nil
}

// GetStartPoint returns the departure point of a route, or nil when the
// route has none.
func (s *SqliteLocationRepository) GetStartPoint(ctx context.Context, routeID string) (*domain.StartPoint, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite location repository: DB is nil")
	}

	query := `
	SELECT route_id, address, lat, lon
	FROM start_points
	WHERE route_id = ?;
	`

	var sp domain.StartPoint
	err := s.DB.QueryRowContext(ctx, query, routeID).Scan(&sp.RouteID, &sp.Address, &sp.Coord.Lat, &sp.Coord.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get start point: query start_points table: %w", err)
	}

	return &sp, nil
}
