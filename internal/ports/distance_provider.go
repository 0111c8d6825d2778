package ports

import (
	"context"
	"visit-route-service/internal/domain"
)

// Waypoint is a labeled coordinate handed to a distance provider.
type Waypoint struct {
	Label string
	Coord domain.Coordinates
}

// Contract for retrieving travel metrics for an ordered stop sequence.
//
// Implementations visit start, then each stop in order, then return to start.
// Road-backed implementations must honor ctx cancellation mid-flight and
// surface failures through the taxonomy in errors.go so the orchestrator can
// tell a timeout from a caller cancellation from a service error.
type DistanceProvider interface {
	Route(ctx context.Context, start Waypoint, stops []Waypoint, withGeometry bool) (domain.RouteMetrics, error)
}
