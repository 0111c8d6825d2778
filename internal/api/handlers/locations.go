package handlers

import (
	"log"
	"net/http"
	"visit-route-service/internal/api/dto"
	"visit-route-service/internal/ports"
)

// LocationHandler exposes read-only location retrieval endpoints.
type LocationHandler struct {
	Repo ports.LocationRepository
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	locs, err := h.Repo.ListLocations(r.Context())
	if err != nil {
		log.Printf("list locations failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	routeFilter := r.URL.Query().Get("route")

	res := dto.ListLocationsResponse{
		Locations: make([]dto.LocationResponse, 0, len(locs)),
	}
	for _, loc := range locs {
		if routeFilter != "" && loc.RouteID != routeFilter {
			continue
		}

		res.Locations = append(res.Locations, dto.LocationResponse{
			LocationID:   loc.ID,
			Name:         loc.Name,
			RouteID:      loc.RouteID,
			Lat:          loc.Coord.Lat,
			Lon:          loc.Coord.Lon,
			Weekday:      loc.Weekday,
			Frequency:    loc.Frequency,
			VisitMinutes: loc.VisitMinutes,
			Ranks:        loc.Ranks,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
