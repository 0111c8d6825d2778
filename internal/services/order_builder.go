package services

import (
	"sort"
	"visit-route-service/internal/adapters/distance"
	"visit-route-service/internal/domain"
)

// How the visiting sequence of a combination is built.
type OrderMode string

const (
	// OrderKeepSaved preserves ranks previously committed for the active
	// cycle slot and appends unranked locations greedily.
	OrderKeepSaved OrderMode = "keep_saved"
	// OrderRebuild ignores saved ranks and rebuilds the whole sequence.
	OrderRebuild OrderMode = "rebuild"
)

// BuildOrder produces the visiting sequence for one combination.
//
// The output is always a permutation of due. Ties (equal rank, equal
// distance) resolve by location ID so the result is deterministic and
// testable regardless of input order.
func BuildOrder(mode OrderMode, start domain.Coordinates, due []*domain.Location, slotKey string) []*domain.Location {
	if len(due) == 0 {
		return []*domain.Location{}
	}

	if mode == OrderRebuild {
		return nearestNeighborOrder(start, due)
	}

	ranked := make([]*domain.Location, 0, len(due))
	unranked := make([]*domain.Location, 0, len(due))
	for _, loc := range due {
		if _, ok := loc.SavedRank(slotKey); ok {
			ranked = append(ranked, loc)
		} else {
			unranked = append(unranked, loc)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		ri, _ := ranked[i].SavedRank(slotKey)
		rj, _ := ranked[j].SavedRank(slotKey)
		if ri != rj {
			return ri < rj
		}
		return ranked[i].ID < ranked[j].ID
	})

	// Fill continues from wherever the saved sequence left off.
	tail := start
	if len(ranked) > 0 {
		tail = ranked[len(ranked)-1].Coord
	}

	return append(ranked, nearestNeighborOrder(tail, unranked)...)
}

// nearestNeighborOrder repeatedly visits the closest unplaced location.
// O(n²), fine for per-combination location counts.
func nearestNeighborOrder(start domain.Coordinates, pool []*domain.Location) []*domain.Location {
	remaining := make([]*domain.Location, len(pool))
	copy(remaining, pool)

	ordered := make([]*domain.Location, 0, len(remaining))
	current := start

	for len(remaining) > 0 {
		best := -1
		bestDist := 0.0

		for i, loc := range remaining {
			d := distance.Meters(current, loc.Coord)
			if best == -1 || d < bestDist || (d == bestDist && loc.ID < remaining[best].ID) {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		ordered = append(ordered, next)
		current = next.Coord
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return ordered
}
