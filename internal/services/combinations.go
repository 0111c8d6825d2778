package services

import (
	"sort"
	"time"
	"visit-route-service/internal/domain"
)

// DueLocations filters the locations due for one (weekday, ISO week) pair on
// a route: the weekday must match and the recurrence code must be active.
func DueLocations(locations []*domain.Location, routeID, weekday string, isoWeek int) []*domain.Location {
	due := make([]*domain.Location, 0, len(locations))
	for _, loc := range locations {
		if loc.RouteID != routeID {
			continue
		}
		if loc.Weekday != weekday {
			continue
		}
		if !domain.IsActive(loc.Frequency, isoWeek) {
			continue
		}
		due = append(due, loc)
	}

	// Stable input order for the order builder regardless of storage order.
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })

	return due
}

// EnumerateCombinations builds the work units of a run: the cartesian set of
// requested weekdays and cycle-week offsets, each resolved to a concrete ISO
// week. Combinations with no due locations are dropped, not reported.
func EnumerateCombinations(
	routeID string,
	weekdays []string,
	offsets []int,
	today time.Time,
	locations []*domain.Location,
) []domain.Combination {
	combos := make([]domain.Combination, 0, len(weekdays)*len(offsets))

	for _, offset := range offsets {
		week := domain.WeekForOffset(today, offset)
		for _, weekday := range weekdays {
			due := DueLocations(locations, routeID, weekday, week)
			if len(due) == 0 {
				continue
			}

			combos = append(combos, domain.Combination{
				RouteID: routeID,
				Weekday: weekday,
				Offset:  offset,
				ISOWeek: week,
				SlotKey: domain.SlotKey(week),
				Due:     due,
			})
		}
	}

	return combos
}
