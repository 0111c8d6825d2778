package services

import (
	"context"
	"fmt"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"
)

// Merge folds the reports of one run into a single cross-combination record.
// The per-combination list is retained verbatim; aggregate figures only
// cover combinations that produced a route.
func Merge(reports []domain.Report) domain.AggregateReport {
	agg := domain.AggregateReport{
		Reports: make([]domain.Report, len(reports)),
	}
	copy(agg.Reports, reports)

	for _, r := range reports {
		if r.Status != domain.StatusOK {
			continue
		}
		agg.Stops += len(r.Stops)
		agg.DistanceMeters += r.Metrics.DistanceMeters
		agg.DriveMinutes += r.DriveMinutes
		agg.ServiceMinutes += r.ServiceMinutes
		agg.TotalMinutes += r.TotalMinutes
	}

	return agg
}

// CommitOrder persists computed orders back into the location records: every
// stop of every successful report gets rank = its 1-based position, keyed by
// that report's cycle slot. Other slot keys and unrelated locations stay
// untouched. Returns the reports with OrderCommitted set.
func CommitOrder(ctx context.Context, repo ports.LocationRepository, reports []domain.Report) ([]domain.Report, error) {
	locations, err := repo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("commit order: list locations: %w", err)
	}

	byID := make(map[string]*domain.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	committed := make([]domain.Report, len(reports))
	copy(committed, reports)

	touched := false
	for i, r := range committed {
		if r.Status != domain.StatusOK {
			continue
		}

		for _, stop := range r.Stops {
			loc, ok := byID[stop.LocationID]
			if !ok {
				return nil, fmt.Errorf("commit order: unknown location %q in report %q", stop.LocationID, r.Label)
			}
			loc.SetRank(r.SlotKey, stop.Position)
		}

		committed[i].OrderCommitted = true
		touched = true
	}

	if !touched {
		return committed, nil
	}

	if err := repo.ReplaceLocations(ctx, locations); err != nil {
		return nil, fmt.Errorf("commit order: replace locations: %w", err)
	}

	return committed, nil
}
