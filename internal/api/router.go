package api

import (
	"net/http"
	"visit-route-service/internal/api/handlers"
	"visit-route-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.LocationRepository,
	roadProvider ports.DistanceProvider,
	straightProvider ports.DistanceProvider,
) http.Handler {
	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Repo: repo}
	calcHandler := &handlers.CalculateHandler{
		Repo:         repo,
		RoadProvider: roadProvider,
		Straight:     straightProvider,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/locations", locHandler.List)
	mux.HandleFunc("/calculate", calcHandler.Calculate)

	return requestIDMiddleware(loggingMiddleware(mux))
}
