package projections

import (
	"context"
	"sort"

	"schoolhub/internal/domain/occupancy"
)

// ActivityReport is one row of the public report.
type ActivityReport struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Schedule         string   `json:"schedule"`
	Participants     []string `json:"participants"`
	ParticipantCount int      `json:"participant_count"`
	MaxParticipants  int      `json:"max_participants"`
	OccupancyRate    float64  `json:"occupancy_rate"`
}

// GetReportsDeps holds dependencies for the report projections.
type GetReportsDeps struct {
	ActivityStore ActivityStore
}

// QueryGetReports lists every activity with its roster and occupancy.
func QueryGetReports(ctx context.Context, deps GetReportsDeps) ([]ActivityReport, error) {
	list, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityReport, 0, len(list))
	for _, a := range list {
		out = append(out, ActivityReport{
			Name:             a.Name,
			Description:      a.Description,
			Schedule:         a.Schedule,
			Participants:     a.Emails(),
			ParticipantCount: len(a.Participants),
			MaxParticipants:  a.MaxParticipants,
			OccupancyRate:    occupancy.Rate(len(a.Participants), a.MaxParticipants),
		})
	}
	return out, nil
}

// AdminReportSummary totals the admin report.
type AdminReportSummary struct {
	TotalActivities                int     `json:"total_activities"`
	TotalParticipants              int     `json:"total_participants"`
	AverageParticipantsPerActivity float64 `json:"average_participants_per_activity"`
}

// AdminActivityReport is one row of the admin report.
type AdminActivityReport struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	Schedule              string   `json:"schedule"`
	ParticipantsCount     int      `json:"participants_count"`
	MaxParticipants       int      `json:"max_participants"`
	UtilizationPercentage float64  `json:"utilization_percentage"`
	Participants          []string `json:"participants"`
}

// AdminReportResult carries the output of the admin report projection.
type AdminReportResult struct {
	Summary    AdminReportSummary    `json:"summary"`
	Activities []AdminActivityReport `json:"activities"`
}

// QueryGetAdminReports builds the admin report, most utilized activity first.
// INVARIANT: activities with equal utilization keep catalogue order
func QueryGetAdminReports(ctx context.Context, deps GetReportsDeps) (AdminReportResult, error) {
	list, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return AdminReportResult{}, err
	}
	res := AdminReportResult{Activities: make([]AdminActivityReport, 0, len(list))}
	for _, a := range list {
		res.Activities = append(res.Activities, AdminActivityReport{
			Name:                  a.Name,
			Description:           a.Description,
			Schedule:              a.Schedule,
			ParticipantsCount:     len(a.Participants),
			MaxParticipants:       a.MaxParticipants,
			UtilizationPercentage: occupancy.Rate(len(a.Participants), a.MaxParticipants),
			Participants:          a.Emails(),
		})
		res.Summary.TotalParticipants += len(a.Participants)
	}
	sort.SliceStable(res.Activities, func(i, j int) bool {
		return res.Activities[i].UtilizationPercentage > res.Activities[j].UtilizationPercentage
	})
	res.Summary.TotalActivities = len(list)
	if len(list) > 0 {
		res.Summary.AverageParticipantsPerActivity = occupancy.Round2(float64(res.Summary.TotalParticipants) / float64(len(list)))
	}
	return res, nil
}
