package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"visit-route-service/internal/domain"
)

// SQLite backed cache for route metrics keyed by the ordered coordinate
// sequence. Keys are expected to be consistent (already normalized) by the
// caller.
type SqliteRouteCache struct {
	DB *sql.DB
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db}
}

// Fetch cached metrics for one route key.
func (s *SqliteRouteCache) Get(ctx context.Context, key string) (domain.RouteMetrics, bool, error) {
	if s.DB == nil {
		return domain.RouteMetrics{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteMetrics{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT metrics
	FROM route_cache
	WHERE cache_key = ?;
	`

	var payload string
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteMetrics{}, false, nil
	}
	if err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var metrics domain.RouteMetrics
	if err := json.Unmarshal([]byte(payload), &metrics); err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: decode metrics: %w", err)
	}

	return metrics, true, nil
}

// Store metrics for a single route key.
func (s *SqliteRouteCache) Put(ctx context.Context, key string, metrics domain.RouteMetrics) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("insert route cache: encode metrics: %w", err)
	}

	q := `
	INSERT OR REPLACE INTO route_cache (cache_key, metrics)
	VALUES (?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, q, key, string(payload)); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
