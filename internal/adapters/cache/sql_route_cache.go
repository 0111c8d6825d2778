package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"
)

// SQLRouteCache is the Postgres-backed variant of the route-metrics cache,
// used when the service runs against a shared database instead of a local
// SQLite file.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

// Fetch cached metrics for one route key.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ domain.RouteMetrics, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return domain.RouteMetrics{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteMetrics{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT metrics
	FROM route_cache
	WHERE cache_key = $1;
	`

	var payload []byte
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteMetrics{}, false, nil
	}
	if err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	var metrics domain.RouteMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: decode metrics: %w", err)
	}

	return metrics, true, nil
}

// Store metrics for a single route key.
func (s *SQLRouteCache) Put(ctx context.Context, key string, metrics domain.RouteMetrics) error {
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
	INSERT INTO route_cache (cache_key, metrics)
	VALUES ($1, $2)
	ON CONFLICT (cache_key) DO UPDATE
	SET metrics = EXCLUDED.metrics;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, payload); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
