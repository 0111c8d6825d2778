package ports

import (
	"context"
	"visit-route-service/internal/domain"
)

// Optional cache for whole-route metrics keyed by the ordered coordinate
// sequence. A miss is (zero, false, nil), not an error.
type RouteCache interface {
	Get(ctx context.Context, key string) (domain.RouteMetrics, bool, error)
	Put(ctx context.Context, key string, metrics domain.RouteMetrics) error
}
