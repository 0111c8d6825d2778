package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	"visit-route-service/internal/adapters/distance"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repository for orchestrator tests.
type memRepo struct {
	locations    []*domain.Location
	startPoints  map[string]*domain.StartPoint
	replaceCalls int
}

func (m *memRepo) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return m.locations, nil
}

func (m *memRepo) ReplaceLocations(ctx context.Context, locs []*domain.Location) error {
	m.locations = locs
	m.replaceCalls++
	return nil
}

func (m *memRepo) GetStartPoint(ctx context.Context, routeID string) (*domain.StartPoint, error) {
	return m.startPoints[routeID], nil
}

// Monday of ISO week 10, 2026.
var monday = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func weeklyLoc(id, weekday string, lat, lon float64) *domain.Location {
	return &domain.Location{
		ID:        id,
		Name:      id,
		RouteID:   "R1",
		Coord:     domain.Coordinates{Lat: lat, Lon: lon},
		Weekday:   weekday,
		Frequency: "4",
	}
}

func newRepo(locs ...*domain.Location) *memRepo {
	return &memRepo{
		locations: locs,
		startPoints: map[string]*domain.StartPoint{
			"R1": {RouteID: "R1", Address: "Depot", Coord: domain.Coordinates{Lat: 52.5, Lon: 13.4}},
		},
	}
}

type progressEvent struct {
	done, total int
	label       string
}

func TestSessionRunHappyPath(t *testing.T) {
	repo := newRepo(
		weeklyLoc("C", "1", 52.5, 13.43),
		weeklyLoc("A", "1", 52.5, 13.41),
		weeklyLoc("B", "1", 52.5, 13.42),
	)

	var events []progressEvent
	session := NewCalculationSession(repo, distance.NewStraightLineProvider(), func(done, total int, label string) {
		events = append(events, progressEvent{done, total, label})
	})

	reports, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1"},
		Offsets:  []int{0},
		Now:      monday,
	})
	require.NoError(t, err)
	require.Equal(t, StateCompleted, session.State())
	require.Len(t, reports, 1)

	rep := reports[0]
	assert.Equal(t, domain.StatusOK, rep.Status)
	assert.Equal(t, 10, rep.ISOWeek)
	assert.Equal(t, "2", rep.SlotKey)

	// Nearest-neighbor from the depot visits A, B, C.
	require.Len(t, rep.Stops, 3)
	assert.Equal(t, "A", rep.Stops[0].LocationID)
	assert.Equal(t, "B", rep.Stops[1].LocationID)
	assert.Equal(t, "C", rep.Stops[2].LocationID)
	for i, stop := range rep.Stops {
		assert.Equal(t, i+1, stop.Position)
	}

	// Default visit duration applies when none is stored.
	assert.Equal(t, 3*domain.DefaultVisitMinutes, rep.ServiceMinutes)
	assert.Equal(t, rep.DriveMinutes+rep.ServiceMinutes, rep.TotalMinutes)
	assert.Greater(t, rep.Metrics.DistanceMeters, 0)
	assert.Len(t, rep.Metrics.Legs, 4) // depot -> A -> B -> C -> depot

	// Progress is monotonic, bounded by total, and finishes at total.
	require.NotEmpty(t, events)
	prev := 0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.done, prev)
		assert.LessOrEqual(t, ev.done, ev.total)
		prev = ev.done
	}
	assert.Equal(t, events[len(events)-1].done, events[len(events)-1].total)
}

func TestSessionRunSizeGuardSkips(t *testing.T) {
	repo := newRepo(
		weeklyLoc("A", "1", 52.5, 13.41),
		weeklyLoc("B", "1", 52.5, 13.42),
		weeklyLoc("C", "1", 52.5, 13.43),
	)

	provider := &distance.ScriptedProvider{}
	session := NewCalculationSession(repo, provider, nil)

	reports, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1"},
		Offsets:  []int{0},
		MaxStops: 2,
		Now:      monday,
	})
	require.NoError(t, err)
	require.Equal(t, StateCompleted, session.State())
	require.Len(t, reports, 1)

	assert.Equal(t, domain.StatusSkipped, reports[0].Status)
	assert.Contains(t, reports[0].Reason, "exceed ceiling")
	assert.Zero(t, reports[0].Metrics.DistanceMeters)
	assert.Equal(t, 0, provider.Calls, "skipped combination must not reach the provider")
}

func TestSessionRunBulkIsolatesProviderFailures(t *testing.T) {
	repo := newRepo(
		weeklyLoc("A", "1", 52.5, 13.41),
		weeklyLoc("B", "2", 52.5, 13.42),
	)

	provider := &distance.ScriptedProvider{Err: fmt.Errorf("osrm route: %w", ports.ErrRouteTimeout)}
	session := NewCalculationSession(repo, provider, nil)

	reports, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1", "2"},
		Offsets:  []int{0},
		Now:      monday,
	})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, session.State())
	require.Len(t, reports, 2)

	for _, rep := range reports {
		assert.Equal(t, domain.StatusError, rep.Status)
		assert.Equal(t, "timed out", rep.Reason)
	}
	assert.Equal(t, 2, provider.Calls)
}

func TestSessionRunSingleScopeAbortsOnFailure(t *testing.T) {
	repo := newRepo(weeklyLoc("A", "1", 52.5, 13.41))

	provider := &distance.ScriptedProvider{Err: &ports.RouteServiceError{Status: 502, Detail: "bad gateway"}}
	session := NewCalculationSession(repo, provider, nil)

	_, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1"},
		Offsets:  []int{0},
		Scope:    ScopeSingle,
		Now:      monday,
	})
	require.Error(t, err)
	assert.Equal(t, StateFailed, session.State())

	var se *ports.RouteServiceError
	assert.ErrorAs(t, err, &se)
}

func TestSessionRunCancellationMidFlight(t *testing.T) {
	repo := newRepo(
		weeklyLoc("A", "1", 52.5, 13.41),
		weeklyLoc("B", "2", 52.5, 13.42),
	)

	var session *CalculationSession
	calls := 0
	provider := distance.RouteFunc(func(ctx context.Context, start ports.Waypoint, stops []ports.Waypoint, withGeometry bool) (domain.RouteMetrics, error) {
		calls++
		if calls == 1 {
			return domain.RouteMetrics{DistanceMeters: 1000, DurationSeconds: 600}, nil
		}
		// Second combination: the caller cancels while the call is in flight.
		session.Cancel()
		<-ctx.Done()
		return domain.RouteMetrics{}, fmt.Errorf("osrm route: %w", ctx.Err())
	})

	session = NewCalculationSession(repo, provider, nil)
	reports, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1", "2"},
		Offsets:  []int{0},
		Now:      monday,
	})

	require.NoError(t, err, "cancellation is not an error")
	assert.Equal(t, StateCancelled, session.State())

	// The already-completed combination stays in the partial result set.
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StatusOK, reports[0].Status)

	// Nothing was persisted.
	assert.Equal(t, 0, repo.replaceCalls)
}

func TestSessionRunConfigErrors(t *testing.T) {
	t.Run("no start point", func(t *testing.T) {
		repo := &memRepo{startPoints: map[string]*domain.StartPoint{}}
		session := NewCalculationSession(repo, &distance.ScriptedProvider{}, nil)

		_, err := session.Run(context.Background(), CalculationRequest{RouteID: "R9", Now: monday})
		assert.ErrorIs(t, err, ErrNoStartPoint)
		assert.Equal(t, StateIdle, session.State())
	})

	t.Run("no due locations", func(t *testing.T) {
		repo := newRepo(weeklyLoc("A", "1", 52.5, 13.41))
		session := NewCalculationSession(repo, &distance.ScriptedProvider{}, nil)

		_, err := session.Run(context.Background(), CalculationRequest{
			RouteID:  "R1",
			Weekdays: []string{"5"},
			Offsets:  []int{0},
			Now:      monday,
		})
		assert.ErrorIs(t, err, ErrNoDueLocations)
		assert.Equal(t, StateIdle, session.State())
	})

	t.Run("invalid weekday", func(t *testing.T) {
		repo := newRepo(weeklyLoc("A", "1", 52.5, 13.41))
		session := NewCalculationSession(repo, &distance.ScriptedProvider{}, nil)

		_, err := session.Run(context.Background(), CalculationRequest{
			RouteID:  "R1",
			Weekdays: []string{"6"},
			Now:      monday,
		})
		require.Error(t, err)
	})

	t.Run("single scope needs one combination", func(t *testing.T) {
		repo := newRepo(weeklyLoc("A", "1", 52.5, 13.41))
		session := NewCalculationSession(repo, &distance.ScriptedProvider{}, nil)

		_, err := session.Run(context.Background(), CalculationRequest{
			RouteID:  "R1",
			Weekdays: []string{"1", "2"},
			Offsets:  []int{0},
			Scope:    ScopeSingle,
			Now:      monday,
		})
		require.Error(t, err)
	})
}

func TestSessionIsSingleUse(t *testing.T) {
	repo := newRepo(weeklyLoc("A", "1", 52.5, 13.41))
	session := NewCalculationSession(repo, distance.NewStraightLineProvider(), nil)

	_, err := session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1"},
		Offsets:  []int{0},
		Now:      monday,
	})
	require.NoError(t, err)

	_, err = session.Run(context.Background(), CalculationRequest{
		RouteID:  "R1",
		Weekdays: []string{"1"},
		Offsets:  []int{0},
		Now:      monday,
	})
	assert.True(t, errors.Is(err, ErrSessionUsed))
}
