package distance

import (
	"context"
	"math"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"

	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// Meters returns the great-circle distance between two points.
func Meters(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// StraightLineProvider estimates route metrics without network access.
//
// Great-circle distances are inflated by an empirical road-sinuosity factor
// and converted to duration at an assumed average speed. Good enough for
// territory-wide planning estimates; not a substitute for road mileage.
// It never fails.
type StraightLineProvider struct {
	RoadFactor  float64
	AvgSpeedKmh float64
}

func NewStraightLineProvider() *StraightLineProvider {
	return &StraightLineProvider{
		RoadFactor:  1.3,
		AvgSpeedKmh: 40,
	}
}

// Route estimates metrics for start -> stops... -> start.
func (p *StraightLineProvider) Route(
	_ context.Context,
	start ports.Waypoint,
	stops []ports.Waypoint,
	withGeometry bool,
) (domain.RouteMetrics, error) {
	points := make([]ports.Waypoint, 0, len(stops)+2)
	points = append(points, start)
	points = append(points, stops...)
	points = append(points, start)

	metrics := domain.RouteMetrics{Legs: make([]domain.RouteLeg, 0, len(points)-1)}

	for i := 0; i+1 < len(points); i++ {
		from, to := points[i], points[i+1]

		meters := int(math.Round(Meters(from.Coord, to.Coord) * p.RoadFactor))
		seconds := int(math.Round(float64(meters) / 1000 / p.AvgSpeedKmh * 3600))

		metrics.Legs = append(metrics.Legs, domain.RouteLeg{
			From:            from.Label,
			To:              to.Label,
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		})
		metrics.DistanceMeters += meters
		metrics.DurationSeconds += seconds
	}

	if withGeometry {
		metrics.Geometry = make([][]float64, 0, len(points))
		for _, pt := range points {
			metrics.Geometry = append(metrics.Geometry, pt.Coord.CoordsToList())
		}
	}

	return metrics, nil
}
