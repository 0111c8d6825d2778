package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"strings"
	"time"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"
	"visit-route-service/internal/ports"
)

// OSRMProvider implements DistanceProvider against an OSRM routing service.
//
// It coordinates:
//   - Persistent route-metrics caching
//   - External API calls with retry/backoff
//   - An independent per-call timeout, kept distinguishable from caller
//     cancellation so the orchestrator can report each separately
//
// The provider is safe for concurrent use, though the orchestrator calls it
// strictly sequentially to respect the public API's rate limits.
type OSRMProvider struct {
	session *http.Client
	baseURL string
	profile string
	timeout time.Duration
	cache   ports.RouteCache
}

func NewOSRMProvider(baseURL string, cache ports.RouteCache) (*OSRMProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	return &OSRMProvider{
		// No client-level timeout: the per-call deadline below governs, so
		// a timeout is always attributable.
		session: &http.Client{},
		baseURL: baseURL,
		profile: "driving",
		timeout: 20 * time.Second,
		cache:   cache,
	}, nil
}

// SetTimeout overrides the per-call deadline (tests, slow self-hosted servers).
func (o *OSRMProvider) SetTimeout(d time.Duration) { o.timeout = d }

type osrmRouteResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route fetches road metrics for start -> stops... -> start.
func (o *OSRMProvider) Route(
	ctx context.Context,
	start ports.Waypoint,
	stops []ports.Waypoint,
	withGeometry bool,
) (_ domain.RouteMetrics, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(stops) == 0 {
		return domain.RouteMetrics{}, nil
	}

	points := make([]ports.Waypoint, 0, len(stops)+2)
	points = append(points, start)
	points = append(points, stops...)
	points = append(points, start)

	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", p.Coord.Lon, p.Coord.Lat))
	}
	coordPath := strings.Join(coords, ";")

	cacheKey := fmt.Sprintf("%s|geom=%t", coordPath, withGeometry)
	if o.cache != nil {
		cached, ok, cerr := o.cache.Get(ctx, cacheKey)
		if cerr != nil {
			log.Printf("route cache read failed: %v", cerr)
		} else if ok {
			return cached, nil
		}
	}

	overview := "false"
	if withGeometry {
		overview = "full"
	}
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%s?overview=%s&geometries=geojson&alternatives=false&steps=false",
		o.baseURL, o.profile, coordPath, overview,
	)

	// Independent deadline layered over the caller's cancellation signal.
	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.doWithRetry(reqCtx, func() (*http.Request, error) {
		return o.newRequest(reqCtx, endpoint)
	})
	if err != nil {
		return domain.RouteMetrics{}, o.classify(ctx, err)
	}
	defer resp.Body.Close()

	var decoded osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteMetrics{}, &ports.RouteServiceError{Detail: "decode route response: " + err.Error()}
	}

	if decoded.Code != "Ok" {
		detail := decoded.Code
		if decoded.Message != "" {
			detail += ": " + decoded.Message
		}
		return domain.RouteMetrics{}, &ports.RouteServiceError{Detail: detail}
	}
	if len(decoded.Routes) == 0 {
		return domain.RouteMetrics{}, &ports.RouteServiceError{Detail: "empty route set"}
	}

	route := decoded.Routes[0]
	if len(route.Legs) != len(points)-1 {
		return domain.RouteMetrics{}, &ports.RouteServiceError{
			Detail: fmt.Sprintf("expected %d legs, got %d", len(points)-1, len(route.Legs)),
		}
	}

	metrics := domain.RouteMetrics{
		DistanceMeters:  int(math.Round(route.Distance)),
		DurationSeconds: int(math.Round(route.Duration)),
		Legs:            make([]domain.RouteLeg, 0, len(route.Legs)),
	}
	for i, leg := range route.Legs {
		metrics.Legs = append(metrics.Legs, domain.RouteLeg{
			From:            points[i].Label,
			To:              points[i+1].Label,
			DistanceMeters:  int(math.Round(leg.Distance)),
			DurationSeconds: int(math.Round(leg.Duration)),
		})
	}
	if withGeometry {
		metrics.Geometry = route.Geometry.Coordinates
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, cacheKey, metrics); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return metrics, nil
}

// classify maps transport-level failures onto the port error taxonomy.
// The caller context decides cancellation vs timeout: a deadline that fires
// while the caller is still live is a provider timeout.
func (o *OSRMProvider) classify(callerCtx context.Context, err error) error {
	if callerCtx.Err() != nil {
		return fmt.Errorf("osrm route: %w", callerCtx.Err())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("osrm route: %w", ports.ErrRouteTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("osrm route: %w", ports.ErrRouteTimeout)
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		return &ports.RouteServiceError{Status: he.Code, Detail: he.Body}
	}

	return &ports.RouteServiceError{Detail: err.Error()}
}
