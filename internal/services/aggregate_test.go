package services

import (
	"context"
	"testing"
	"visit-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRetainsPerCombinationReports(t *testing.T) {
	reports := []domain.Report{
		{
			Label:          "Monday, week 10 (slot 2)",
			Status:         domain.StatusOK,
			Stops:          []domain.ReportStop{{LocationID: "A", Position: 1}, {LocationID: "B", Position: 2}},
			Metrics:        domain.RouteMetrics{DistanceMeters: 12000, DurationSeconds: 1800},
			ServiceMinutes: 30,
			DriveMinutes:   30,
			TotalMinutes:   60,
		},
		{
			Label:  "Tuesday, week 10 (slot 2)",
			Status: domain.StatusSkipped,
			Reason: "40 due locations exceed ceiling 25",
		},
		{
			Label:          "Wednesday, week 10 (slot 2)",
			Status:         domain.StatusOK,
			Stops:          []domain.ReportStop{{LocationID: "C", Position: 1}},
			Metrics:        domain.RouteMetrics{DistanceMeters: 5000, DurationSeconds: 600},
			ServiceMinutes: 15,
			DriveMinutes:   10,
			TotalMinutes:   25,
		},
	}

	agg := Merge(reports)

	require.Len(t, agg.Reports, 3, "per-combination reports stay first-class")
	assert.Equal(t, 3, agg.Stops)
	assert.Equal(t, 17000, agg.DistanceMeters)
	assert.Equal(t, 40, agg.DriveMinutes)
	assert.Equal(t, 45, agg.ServiceMinutes)
	assert.Equal(t, 85, agg.TotalMinutes)
	assert.Equal(t, agg.DriveMinutes+agg.ServiceMinutes, agg.TotalMinutes)
}

func TestCommitOrderWritesRanksForSlotOnly(t *testing.T) {
	a := &domain.Location{ID: "A", RouteID: "R1", Ranks: map[string]int{"1": 9}}
	b := &domain.Location{ID: "B", RouteID: "R1"}
	other := &domain.Location{ID: "Z", RouteID: "R2", Ranks: map[string]int{"2": 3}}

	repo := &memRepo{locations: []*domain.Location{a, b, other}}

	reports := []domain.Report{
		{
			Label:   "Monday, week 10 (slot 2)",
			SlotKey: "2",
			Status:  domain.StatusOK,
			Stops: []domain.ReportStop{
				{LocationID: "B", Position: 1},
				{LocationID: "A", Position: 2},
			},
		},
		{
			Label:  "Tuesday, week 10 (slot 2)",
			Status: domain.StatusError,
			Reason: "timed out",
		},
	}

	committed, err := CommitOrder(context.Background(), repo, reports)
	require.NoError(t, err)
	require.Equal(t, 1, repo.replaceCalls)

	assert.True(t, committed[0].OrderCommitted)
	assert.False(t, committed[1].OrderCommitted)

	assert.Equal(t, 1, b.Ranks["2"])
	assert.Equal(t, 2, a.Ranks["2"])
	// Other slot keys and unrelated locations stay untouched.
	assert.Equal(t, 9, a.Ranks["1"])
	assert.Equal(t, 3, other.Ranks["2"])
}

func TestCommitOrderNoSuccessfulReports(t *testing.T) {
	repo := &memRepo{}

	committed, err := CommitOrder(context.Background(), repo, []domain.Report{
		{Label: "Monday, week 10 (slot 2)", Status: domain.StatusSkipped},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.replaceCalls)
	assert.False(t, committed[0].OrderCommitted)
}
