package domain

// Default service time assumed when a location carries no usable estimate.
const DefaultVisitMinutes = 15

// Weekday codes carried by locations. Weekend codes are never scheduled.
var Weekdays = []string{"1", "2", "3", "4", "5"}

// Human labels for weekday codes, used in combination labels and error messages.
var WeekdayNames = map[string]string{
	"1": "Monday",
	"2": "Tuesday",
	"3": "Wednesday",
	"4": "Thursday",
	"5": "Friday",
}

// Location is a recurring visit site on a route.
//
// Ranks maps a cycle-slot key ("1".."4") to a previously committed visit
// rank. Ranks are assigned 1..N when a computed order is accepted; uniqueness
// is by convention only and is not enforced here.
type Location struct {
	ID           string
	Name         string
	RouteID      string
	Coord        Coordinates
	Weekday      string
	Frequency    string
	VisitMinutes int
	Ranks        map[string]int
}

// EffectiveVisitMinutes returns the visit duration estimate, falling back to
// the default when the stored value is absent or invalid.
func (l *Location) EffectiveVisitMinutes() int {
	if l.VisitMinutes <= 0 {
		return DefaultVisitMinutes
	}
	return l.VisitMinutes
}

// SavedRank returns the committed rank for a cycle-slot key, if any.
func (l *Location) SavedRank(slotKey string) (int, bool) {
	if l.Ranks == nil {
		return 0, false
	}
	r, ok := l.Ranks[slotKey]
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

// SetRank stores a rank under one cycle-slot key without touching other keys.
func (l *Location) SetRank(slotKey string, rank int) {
	if l.Ranks == nil {
		l.Ranks = make(map[string]int, 4)
	}
	l.Ranks[slotKey] = rank
}

// StartPoint is the departure point of a route group. A route without a
// start point cannot be calculated.
type StartPoint struct {
	RouteID string
	Address string
	Coord   Coordinates
}
