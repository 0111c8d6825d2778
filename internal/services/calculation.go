package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"

	"github.com/google/uuid"
)

// Which failure policy a run uses.
type Scope string

const (
	// ScopeBulk surveys many combinations loosely: a recoverable provider
	// failure is recorded against its combination and the run continues.
	ScopeBulk Scope = "bulk"
	// ScopeSingle commits one route precisely: any provider failure aborts
	// the run.
	ScopeSingle Scope = "single"
)

// DefaultMaxStops bounds worst-case request size to the external provider.
const DefaultMaxStops = 25

// Configuration errors surfaced before any network call.
var (
	ErrNoStartPoint   = errors.New("route has no start point")
	ErrNoDueLocations = errors.New("no due locations for the requested combinations")
	ErrSessionUsed    = errors.New("calculation session already used")
)

// CalculationRequest is the fully-specified scope of one run, decoupled from
// any interactive filter state.
type CalculationRequest struct {
	RouteID      string
	Weekdays     []string
	Offsets      []int
	Scope        Scope
	OrderMode    OrderMode
	WithGeometry bool
	MaxStops     int
	// Now anchors offset resolution; zero means time.Now().
	Now time.Time
}

func (r *CalculationRequest) normalize() {
	if len(r.Weekdays) == 0 {
		r.Weekdays = append([]string{}, domain.Weekdays...)
	}
	if len(r.Offsets) == 0 {
		r.Offsets = []int{0, 1, 2, 3}
	}
	if r.Scope == "" {
		r.Scope = ScopeBulk
	}
	if r.OrderMode == "" {
		r.OrderMode = OrderKeepSaved
	}
	if r.MaxStops <= 0 {
		r.MaxStops = DefaultMaxStops
	}
	if r.Now.IsZero() {
		r.Now = time.Now()
	}
}

func (r *CalculationRequest) validate() error {
	if r.RouteID == "" {
		return errors.New("route id is required")
	}
	for _, wd := range r.Weekdays {
		if _, ok := domain.WeekdayNames[wd]; !ok {
			return fmt.Errorf("invalid weekday code %q", wd)
		}
	}
	for _, off := range r.Offsets {
		if off < 0 || off > 3 {
			return fmt.Errorf("invalid week offset %d", off)
		}
	}
	if r.Scope != ScopeBulk && r.Scope != ScopeSingle {
		return fmt.Errorf("invalid scope %q", r.Scope)
	}
	if r.Scope == ScopeSingle && (len(r.Weekdays) != 1 || len(r.Offsets) != 1) {
		return errors.New("single scope requires exactly one weekday and one offset")
	}
	if r.OrderMode != OrderKeepSaved && r.OrderMode != OrderRebuild {
		return fmt.Errorf("invalid order mode %q", r.OrderMode)
	}
	return nil
}

// Lifecycle of a calculation session.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateCancelled SessionState = "cancelled"
	StateFailed    SessionState = "failed"
)

// ProgressFunc receives progress events. done is monotonic and never
// exceeds total.
type ProgressFunc func(done, total int, label string)

// CalculationSession runs one calculation and owns its cancellation.
//
// A session is single-use: Run may be called once. Combinations are
// processed strictly one at a time; the road provider is a shared,
// rate-sensitive external resource, and serializing keeps cancellation a
// single-token operation.
type CalculationSession struct {
	ID string

	repo     ports.LocationRepository
	provider ports.DistanceProvider
	progress ProgressFunc

	mu      sync.Mutex
	state   SessionState
	cancel  context.CancelFunc
	reports []domain.Report
}

func NewCalculationSession(
	repo ports.LocationRepository,
	provider ports.DistanceProvider,
	progress ProgressFunc,
) *CalculationSession {
	return &CalculationSession{
		ID:       uuid.NewString(),
		repo:     repo,
		provider: provider,
		progress: progress,
		state:    StateIdle,
	}
}

func (s *CalculationSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reports returns the per-combination results produced so far.
func (s *CalculationSession) Reports() []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Cancel aborts the in-flight provider call and stops starting new
// combinations. Safe to call from another goroutine or a progress callback.
func (s *CalculationSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *CalculationSession) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *CalculationSession) appendReport(r domain.Report) {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
}

func (s *CalculationSession) emit(done, total int, label string) {
	if s.progress != nil {
		s.progress(done, total, label)
	}
}

// Run executes the calculation. Configuration errors abort before any
// provider call and leave the session idle. Cancellation is not an error:
// the run ends in StateCancelled with partial reports preserved.
func (s *CalculationSession) Run(ctx context.Context, req CalculationRequest) ([]domain.Report, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrSessionUsed
	}
	s.mu.Unlock()

	req.normalize()
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("run calculation: %w", err)
	}

	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("run calculation: list locations: %w", err)
	}

	startPoint, err := s.repo.GetStartPoint(ctx, req.RouteID)
	if err != nil {
		return nil, fmt.Errorf("run calculation: get start point: %w", err)
	}
	if startPoint == nil {
		return nil, fmt.Errorf("run calculation: route %q: %w", req.RouteID, ErrNoStartPoint)
	}

	combos := EnumerateCombinations(req.RouteID, req.Weekdays, req.Offsets, req.Now, locations)
	if len(combos) == 0 {
		return nil, fmt.Errorf("run calculation: route %q: %w", req.RouteID, ErrNoDueLocations)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.state = StateRunning
	s.mu.Unlock()

	total := len(combos)
	done := 0

	for _, combo := range combos {
		if runCtx.Err() != nil {
			s.setState(StateCancelled)
			return s.Reports(), nil
		}

		label := combo.Label()
		s.emit(done, total, label)

		if len(combo.Due) > req.MaxStops {
			s.appendReport(domain.Report{
				Label:     label,
				RouteID:   combo.RouteID,
				Weekday:   combo.Weekday,
				ISOWeek:   combo.ISOWeek,
				SlotKey:   combo.SlotKey,
				Status:    domain.StatusSkipped,
				Reason:    fmt.Sprintf("%d due locations exceed ceiling %d", len(combo.Due), req.MaxStops),
				OrderMode: string(req.OrderMode),
			})
			done++
			s.emit(done, total, label)
			continue
		}

		ordered := BuildOrder(req.OrderMode, startPoint.Coord, combo.Due, combo.SlotKey)

		startWP := ports.Waypoint{Label: startPoint.Address, Coord: startPoint.Coord}
		stops := make([]ports.Waypoint, 0, len(ordered))
		for _, loc := range ordered {
			stops = append(stops, ports.Waypoint{Label: loc.Name, Coord: loc.Coord})
		}

		metrics, err := s.provider.Route(runCtx, startWP, stops, req.WithGeometry)
		if err != nil {
			if runCtx.Err() != nil || errors.Is(err, context.Canceled) {
				s.setState(StateCancelled)
				return s.Reports(), nil
			}

			if req.Scope == ScopeSingle {
				s.setState(StateFailed)
				return s.Reports(), fmt.Errorf("run calculation: %s: %w", label, err)
			}

			s.appendReport(domain.Report{
				Label:     label,
				RouteID:   combo.RouteID,
				Weekday:   combo.Weekday,
				ISOWeek:   combo.ISOWeek,
				SlotKey:   combo.SlotKey,
				Status:    domain.StatusError,
				Reason:    failureReason(err),
				OrderMode: string(req.OrderMode),
			})
			done++
			s.emit(done, total, label)
			continue
		}

		reportStops := make([]domain.ReportStop, 0, len(ordered))
		serviceMinutes := 0
		for i, loc := range ordered {
			minutes := loc.EffectiveVisitMinutes()
			serviceMinutes += minutes
			reportStops = append(reportStops, domain.ReportStop{
				LocationID:   loc.ID,
				Name:         loc.Name,
				Position:     i + 1,
				VisitMinutes: minutes,
			})
		}

		driveMinutes := minutesFromSeconds(metrics.DurationSeconds)

		s.appendReport(domain.Report{
			Label:          label,
			RouteID:        combo.RouteID,
			Weekday:        combo.Weekday,
			ISOWeek:        combo.ISOWeek,
			SlotKey:        combo.SlotKey,
			Status:         domain.StatusOK,
			Stops:          reportStops,
			Metrics:        metrics,
			ServiceMinutes: serviceMinutes,
			DriveMinutes:   driveMinutes,
			TotalMinutes:   driveMinutes + serviceMinutes,
			OrderMode:      string(req.OrderMode),
		})
		done++
		s.emit(done, total, label)
	}

	s.setState(StateCompleted)
	return s.Reports(), nil
}

// failureReason renders a provider failure for the per-combination record.
func failureReason(err error) string {
	if errors.Is(err, ports.ErrRouteTimeout) {
		return "timed out"
	}
	var se *ports.RouteServiceError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}

func minutesFromSeconds(seconds int) int {
	return (seconds + 30) / 60
}
