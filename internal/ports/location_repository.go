package ports

import (
	"context"
	"visit-route-service/internal/domain"
)

// Port: boundary for reading and replacing visit locations.
//
// The engine only needs read-all and replace-all; storage format is the
// adapter's concern. ReplaceLocations is how a computed order is committed
// back into the location records.
type LocationRepository interface {
	ListLocations(ctx context.Context) ([]*domain.Location, error)
	ReplaceLocations(ctx context.Context, locations []*domain.Location) error
	// GetStartPoint returns nil with no error when the route has none.
	GetStartPoint(ctx context.Context, routeID string) (*domain.StartPoint, error)
}
