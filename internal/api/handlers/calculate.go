package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"visit-route-service/internal/api/dto"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"
	"visit-route-service/internal/services"
)

type CalculateHandler struct {
	Repo         ports.LocationRepository
	RoadProvider ports.DistanceProvider
	Straight     ports.DistanceProvider
}

// Calculate runs one calculation session synchronously and returns the
// per-combination reports plus the aggregate. The client disconnecting
// cancels the run via the request context.
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CalculateRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.Route) == "" {
		writeError(w, r, http.StatusBadRequest, "route is required")
		return
	}

	provider := h.RoadProvider
	switch req.Provider {
	case "", "road":
	case "straightline":
		provider = h.Straight
	default:
		writeError(w, r, http.StatusBadRequest, "provider must be road or straightline")
		return
	}

	svcReq := services.CalculationRequest{
		RouteID:      req.Route,
		Weekdays:     req.Weekdays,
		Offsets:      req.Offsets,
		Scope:        services.Scope(req.Scope),
		OrderMode:    services.OrderMode(req.OrderMode),
		WithGeometry: req.WithGeometry,
		MaxStops:     req.MaxStops,
	}

	session := services.NewCalculationSession(h.Repo, provider, func(done, total int, label string) {
		log.Printf("calc progress done=%d total=%d label=%q", done, total, label)
	})

	reports, err := session.Run(r.Context(), svcReq)
	if err != nil {
		if session.State() == services.StateFailed {
			log.Printf("calculation failed session=%s err=%v", session.ID, err)
			writeError(w, r, http.StatusBadGateway, err.Error())
			return
		}
		// Run never started: configuration problem.
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.CommitOrder && session.State() == services.StateCompleted {
		reports, err = services.CommitOrder(r.Context(), h.Repo, reports)
		if err != nil {
			log.Printf("commit order failed session=%s err=%v", session.ID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	agg := services.Merge(reports)

	res := dto.CalculateResponse{
		SessionID: session.ID,
		State:     string(session.State()),
		Reports:   make([]dto.ReportResponse, 0, len(reports)),
		Aggregate: dto.AggregateResponse{
			Stops:          agg.Stops,
			DistanceMeters: agg.DistanceMeters,
			DriveMinutes:   agg.DriveMinutes,
			ServiceMinutes: agg.ServiceMinutes,
			TotalMinutes:   agg.TotalMinutes,
		},
	}
	for _, rep := range reports {
		res.Reports = append(res.Reports, toReportResponse(rep))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toReportResponse(rep domain.Report) dto.ReportResponse {
	stops := make([]dto.ReportStopResponse, 0, len(rep.Stops))
	for _, s := range rep.Stops {
		stops = append(stops, dto.ReportStopResponse{
			LocationID:   s.LocationID,
			Name:         s.Name,
			Position:     s.Position,
			VisitMinutes: s.VisitMinutes,
		})
	}

	legs := make([]dto.RouteLegResponse, 0, len(rep.Metrics.Legs))
	for _, l := range rep.Metrics.Legs {
		legs = append(legs, dto.RouteLegResponse{
			From:            l.From,
			To:              l.To,
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.DurationSeconds,
		})
	}

	return dto.ReportResponse{
		Label:           rep.Label,
		Weekday:         rep.Weekday,
		ISOWeek:         rep.ISOWeek,
		SlotKey:         rep.SlotKey,
		Status:          rep.Status,
		Reason:          rep.Reason,
		Stops:           stops,
		Legs:            legs,
		Geometry:        rep.Metrics.Geometry,
		DistanceMeters:  rep.Metrics.DistanceMeters,
		DurationSeconds: rep.Metrics.DurationSeconds,
		ServiceMinutes:  rep.ServiceMinutes,
		DriveMinutes:    rep.DriveMinutes,
		TotalMinutes:    rep.TotalMinutes,
		OrderMode:       rep.OrderMode,
		OrderCommitted:  rep.OrderCommitted,
	}
}
