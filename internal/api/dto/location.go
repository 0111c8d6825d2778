package dto

type LocationResponse struct {
	LocationID   string         `json:"location_id"`
	Name         string         `json:"name"`
	RouteID      string         `json:"route_id"`
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	Weekday      string         `json:"weekday"`
	Frequency    string         `json:"frequency"`
	VisitMinutes int            `json:"visit_minutes"`
	Ranks        map[string]int `json:"ranks,omitempty"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}
