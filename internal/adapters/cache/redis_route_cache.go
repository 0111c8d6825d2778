package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"visit-route-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const redisRouteKeyPrefix = "route:"

// RedisRouteCache is a Redis-backed route-metrics cache with expiry, for
// deployments where several service instances share one cache.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{
		Client: client,
		TTL:    30 * 24 * time.Hour,
	}
}

// Fetch cached metrics for one route key.
func (r *RedisRouteCache) Get(ctx context.Context, key string) (domain.RouteMetrics, bool, error) {
	if r.Client == nil {
		return domain.RouteMetrics{}, false, errors.New("route cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteMetrics{}, false, errors.New("get route cache: key must not be empty")
	}

	payload, err := r.Client.Get(ctx, redisRouteKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteMetrics{}, false, nil
	}
	if err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: redis get: %w", err)
	}

	var metrics domain.RouteMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return domain.RouteMetrics{}, false, fmt.Errorf("get route cache: decode metrics: %w", err)
	}

	return metrics, true, nil
}

// Store metrics for a single route key.
func (r *RedisRouteCache) Put(ctx context.Context, key string, metrics domain.RouteMetrics) error {
	if r.Client == nil {
		return errors.New("route cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("insert route cache: encode metrics: %w", err)
	}

	if err := r.Client.Set(ctx, redisRouteKeyPrefix+key, payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: redis set: %w", key, err)
	}

	return nil
}
