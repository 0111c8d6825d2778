package distance

import (
	"context"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"
)

// RouteFunc adapts a plain function to the DistanceProvider interface.
type RouteFunc func(ctx context.Context, start ports.Waypoint, stops []ports.Waypoint, withGeometry bool) (domain.RouteMetrics, error)

func (f RouteFunc) Route(ctx context.Context, start ports.Waypoint, stops []ports.Waypoint, withGeometry bool) (domain.RouteMetrics, error) {
	return f(ctx, start, stops, withGeometry)
}

// ScriptedProvider returns fixed metrics or a fixed error and counts calls.
// Not safe for concurrent use; the orchestrator is sequential by design.
type ScriptedProvider struct {
	Metrics domain.RouteMetrics
	Err     error
	Calls   int
}

func (p *ScriptedProvider) Route(ctx context.Context, start ports.Waypoint, stops []ports.Waypoint, withGeometry bool) (domain.RouteMetrics, error) {
	p.Calls++
	if p.Err != nil {
		return domain.RouteMetrics{}, p.Err
	}
	return p.Metrics, nil
}
