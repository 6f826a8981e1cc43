package projections

import (
	"context"
	"time"

	domainActivity "schoolhub/internal/domain/activity"
	domainClub "schoolhub/internal/domain/club"
	domainNotification "schoolhub/internal/domain/notification"
)

// ActivityStore interface for activity queries.
type ActivityStore interface {
	Get(ctx context.Context, name string) (domainActivity.Activity, error)
	List(ctx context.Context) ([]domainActivity.Activity, error)
}

// ClubStore interface for club and event queries.
type ClubStore interface {
	Get(ctx context.Context, id string) (domainClub.Club, error)
	List(ctx context.Context) ([]domainClub.Club, error)
	GetEvent(ctx context.Context, clubID, eventID string) (domainClub.Event, error)
	ListEvents(ctx context.Context, clubID string) ([]domainClub.Event, error)
}

// NotificationStore interface for notification queries.
type NotificationStore interface {
	ListByRecipient(ctx context.Context, email string, unreadOnly bool) ([]domainNotification.Notification, error)
	CountUnread(ctx context.Context, email string) (int, error)
}

// AccountCounter interface for account totals.
type AccountCounter interface {
	Count(ctx context.Context) (int, error)
}

// PathTiming aggregates timings sharing a route pattern or query method.
type PathTiming struct {
	Path  string  `json:"path"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
}

// TimingSummary summarizes recent request and query timings.
type TimingSummary struct {
	Recorded       int64        `json:"recorded"`
	Requests       int          `json:"requests"`
	P50Ms          float64      `json:"p50_ms"`
	P95Ms          float64      `json:"p95_ms"`
	P99Ms          float64      `json:"p99_ms"`
	SlowestPaths   []PathTiming `json:"slowest_paths"`
	SlowestQueries []PathTiming `json:"slowest_queries"`
}

// PerfSource interface for request timing summaries.
type PerfSource interface {
	TimingSummary(since time.Time, topN int) TimingSummary
}

// formatTime renders t for API output, or "" when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
