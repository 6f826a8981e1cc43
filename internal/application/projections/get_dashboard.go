package projections

import (
	"context"
	"sort"
	"time"
)

// dashboardWindow is how far back request timings are summarized.
const dashboardWindow = 15 * time.Minute

// DashboardCounts totals the main aggregates.
type DashboardCounts struct {
	Activities      int `json:"activities"`
	Clubs           int `json:"clubs"`
	Events          int `json:"events"`
	Accounts        int `json:"accounts"`
	PendingRequests int `json:"pending_requests"`
	Participants    int `json:"participants"`
}

// DashboardResult carries the output of the admin dashboard projection.
type DashboardResult struct {
	Counts      DashboardCounts     `json:"counts"`
	Busiest     []ActivityOccupancy `json:"busiest_activities"`
	Performance TimingSummary       `json:"performance"`
	GeneratedAt string              `json:"generated_at"`
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	ActivityStore ActivityStore
	ClubStore     ClubStore
	AccountStore  AccountCounter
	Perf          PerfSource // optional: nil leaves Performance empty
	Now           func() time.Time
}

// QueryGetDashboard summarizes system state for staff.
// PRE: caller is staff
// POST: counts reflect the stores at query time; at most five busiest activities
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	activities, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	stats := statisticsFrom(activities)
	clubs, err := deps.ClubStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	events, err := deps.ClubStore.ListEvents(ctx, "")
	if err != nil {
		return DashboardResult{}, err
	}
	accounts, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return DashboardResult{}, err
	}

	now := deps.Now()
	res := DashboardResult{
		Counts: DashboardCounts{
			Activities:   stats.Summary.TotalActivities,
			Clubs:        len(clubs),
			Events:       len(events),
			Accounts:     accounts,
			Participants: stats.Summary.TotalParticipants,
		},
		GeneratedAt: formatTime(now),
	}
	for _, a := range activities {
		res.Counts.PendingRequests += len(a.PendingRequests())
	}

	busiest := stats.Activities
	sort.SliceStable(busiest, func(i, j int) bool { return busiest[i].OccupancyRate > busiest[j].OccupancyRate })
	if len(busiest) > 5 {
		busiest = busiest[:5]
	}
	res.Busiest = busiest

	if deps.Perf != nil {
		res.Performance = deps.Perf.TimingSummary(now.Add(-dashboardWindow), 5)
	}
	return res, nil
}
