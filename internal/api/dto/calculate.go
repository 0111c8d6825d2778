package dto

type CalculateRequest struct {
	Route        string   `json:"route"`
	Weekdays     []string `json:"weekdays"`
	Offsets      []int    `json:"offsets"`
	Scope        string   `json:"scope"`
	OrderMode    string   `json:"order_mode"`
	Provider     string   `json:"provider"`
	WithGeometry bool     `json:"with_geometry"`
	CommitOrder  bool     `json:"commit_order"`
	MaxStops     int      `json:"max_stops"`
}

type RouteLegResponse struct {
	From            string `json:"from"`
	To              string `json:"to"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
}

type ReportStopResponse struct {
	LocationID   string `json:"location_id"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	VisitMinutes int    `json:"visit_minutes"`
}

type ReportResponse struct {
	Label           string               `json:"label"`
	Weekday         string               `json:"weekday"`
	ISOWeek         int                  `json:"iso_week"`
	SlotKey         string               `json:"slot_key"`
	Status          string               `json:"status"`
	Reason          string               `json:"reason,omitempty"`
	Stops           []ReportStopResponse `json:"stops"`
	Legs            []RouteLegResponse   `json:"legs,omitempty"`
	Geometry        [][]float64          `json:"geometry,omitempty"`
	DistanceMeters  int                  `json:"distance_meters"`
	DurationSeconds int                  `json:"duration_seconds"`
	ServiceMinutes  int                  `json:"service_minutes"`
	DriveMinutes    int                  `json:"drive_minutes"`
	TotalMinutes    int                  `json:"total_minutes"`
	OrderMode       string               `json:"order_mode"`
	OrderCommitted  bool                 `json:"order_committed"`
}

type AggregateResponse struct {
	Stops          int `json:"stops"`
	DistanceMeters int `json:"distance_meters"`
	DriveMinutes   int `json:"drive_minutes"`
	ServiceMinutes int `json:"service_minutes"`
	TotalMinutes   int `json:"total_minutes"`
}

type CalculateResponse struct {
	SessionID string            `json:"session_id"`
	State     string            `json:"state"`
	Reports   []ReportResponse  `json:"reports"`
	Aggregate AggregateResponse `json:"aggregate"`
}
