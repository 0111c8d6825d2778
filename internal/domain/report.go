package domain

import "fmt"

// Combination is one (weekday, cycle-week) unit of calculation work.
// It is constructed per run and never persisted.
type Combination struct {
	RouteID string
	Weekday string
	Offset  int
	ISOWeek int
	SlotKey string
	Due     []*Location
}

// Label renders the combination for progress events and error messages.
func (c Combination) Label() string {
	name := WeekdayNames[c.Weekday]
	if name == "" {
		name = "day " + c.Weekday
	}
	return fmt.Sprintf("%s, week %d (slot %s)", name, c.ISOWeek, c.SlotKey)
}

// RouteLeg is one segment of an ordered route.
type RouteLeg struct {
	From            string
	To              string
	DistanceMeters  int
	DurationSeconds int
}

// RouteMetrics is the output of a distance provider for an ordered sequence.
// Leg count is stops+1 when the provider closes the loop back to the start.
// Geometry, when requested, is an ordered list of [lon, lat] points.
type RouteMetrics struct {
	DistanceMeters  int
	DurationSeconds int
	Legs            []RouteLeg
	Geometry        [][]float64
}

// Per-combination outcome classification.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// ReportStop is one ordered stop in a calculated route.
type ReportStop struct {
	LocationID   string
	Name         string
	Position     int
	VisitMinutes int
}

// Report is the calculation result for a single combination. It becomes
// persistent only when the caller accepts the computed order.
type Report struct {
	Label          string
	RouteID        string
	Weekday        string
	ISOWeek        int
	SlotKey        string
	Status         string
	Reason         string
	Stops          []ReportStop
	Metrics        RouteMetrics
	ServiceMinutes int
	DriveMinutes   int
	TotalMinutes   int
	OrderMode      string
	OrderCommitted bool
}

// AggregateReport merges the reports of one run. The per-combination list
// stays first-class; aggregate figures are never un-merged after the fact.
type AggregateReport struct {
	Reports        []Report
	Stops          int
	DistanceMeters int
	DriveMinutes   int
	ServiceMinutes int
	TotalMinutes   int
}
