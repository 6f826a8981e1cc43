package projections

import (
	"context"

	domainActivity "schoolhub/internal/domain/activity"
	"schoolhub/internal/domain/occupancy"
)

// StatisticsSummary totals every activity.
type StatisticsSummary struct {
	TotalActivities      int     `json:"total_activities"`
	TotalParticipants    int     `json:"total_participants"`
	TotalCapacity        int     `json:"total_capacity"`
	OverallOccupancyRate float64 `json:"overall_occupancy_rate"`
}

// ActivityOccupancy is one row of the public statistics.
type ActivityOccupancy struct {
	Name             string  `json:"name"`
	ParticipantCount int     `json:"participant_count"`
	MaxParticipants  int     `json:"max_participants"`
	AvailableSpots   int     `json:"available_spots"`
	OccupancyRate    float64 `json:"occupancy_rate"`
	OccupancyLevel   string  `json:"occupancy_level"`
}

// StatisticsResult carries the output of the public statistics projection.
type StatisticsResult struct {
	Summary    StatisticsSummary   `json:"summary"`
	Activities []ActivityOccupancy `json:"activities"`
}

// GetStatisticsDeps holds dependencies for the statistics projections.
type GetStatisticsDeps struct {
	ActivityStore ActivityStore
}

// QueryGetStatistics computes occupancy per activity and overall.
// POST: OverallOccupancyRate is 0 when total capacity is 0
func QueryGetStatistics(ctx context.Context, deps GetStatisticsDeps) (StatisticsResult, error) {
	list, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return StatisticsResult{}, err
	}
	return statisticsFrom(list), nil
}

func statisticsFrom(list []domainActivity.Activity) StatisticsResult {
	res := StatisticsResult{Activities: make([]ActivityOccupancy, 0, len(list))}
	for _, a := range list {
		count := len(a.Participants)
		rate := occupancy.Rate(count, a.MaxParticipants)
		res.Activities = append(res.Activities, ActivityOccupancy{
			Name:             a.Name,
			ParticipantCount: count,
			MaxParticipants:  a.MaxParticipants,
			AvailableSpots:   a.SpotsLeft(),
			OccupancyRate:    rate,
			OccupancyLevel:   occupancy.Level(rate),
		})
		res.Summary.TotalParticipants += count
		res.Summary.TotalCapacity += a.MaxParticipants
	}
	res.Summary.TotalActivities = len(list)
	res.Summary.OverallOccupancyRate = occupancy.Rate(res.Summary.TotalParticipants, res.Summary.TotalCapacity)
	return res
}

// ActivityUtilization is one row of the admin statistics.
type ActivityUtilization struct {
	Name         string  `json:"name"`
	Participants int     `json:"participants"`
	Capacity     int     `json:"capacity"`
	Utilization  float64 `json:"utilization"`
}

// AdminStatisticsResult carries the output of the admin statistics projection.
type AdminStatisticsResult struct {
	TotalActivities    int                   `json:"total_activities"`
	TotalParticipants  int                   `json:"total_participants"`
	TotalCapacity      int                   `json:"total_capacity"`
	OverallUtilization float64               `json:"overall_utilization"`
	ActivityDetails    []ActivityUtilization `json:"activity_details"`
}

// QueryGetAdminStatistics computes utilization per activity and overall.
func QueryGetAdminStatistics(ctx context.Context, deps GetStatisticsDeps) (AdminStatisticsResult, error) {
	list, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return AdminStatisticsResult{}, err
	}
	res := AdminStatisticsResult{
		TotalActivities: len(list),
		ActivityDetails: make([]ActivityUtilization, 0, len(list)),
	}
	for _, a := range list {
		res.ActivityDetails = append(res.ActivityDetails, ActivityUtilization{
			Name:         a.Name,
			Participants: len(a.Participants),
			Capacity:     a.MaxParticipants,
			Utilization:  occupancy.Rate(len(a.Participants), a.MaxParticipants),
		})
		res.TotalParticipants += len(a.Participants)
		res.TotalCapacity += a.MaxParticipants
	}
	res.OverallUtilization = occupancy.Rate(res.TotalParticipants, res.TotalCapacity)
	return res, nil
}
