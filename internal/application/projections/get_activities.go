package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	domainActivity "schoolhub/internal/domain/activity"
)

// ActivityView is the API shape of one activity.
type ActivityView struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Schedule         string            `json:"schedule"`
	MaxParticipants  int               `json:"max_participants"`
	Participants     []string          `json:"participants"`
	Roles            map[string]string `json:"roles"`
	RequiresApproval bool              `json:"requires_approval"`
	PendingRequests  int               `json:"pending_requests"`
	Version          int64             `json:"version"`
	CreatedAt        string            `json:"created_at"` // nanosecond precision; tells a recreated name apart
}

// NewActivityView builds the API view of a.
func NewActivityView(a domainActivity.Activity) ActivityView {
	v := ActivityView{
		Name:             a.Name,
		Description:      a.Description,
		Schedule:         a.Schedule,
		MaxParticipants:  a.MaxParticipants,
		Participants:     a.Emails(),
		Roles:            a.Roles(),
		RequiresApproval: a.RequiresApproval,
		PendingRequests:  len(a.PendingRequests()),
		Version:          a.Version,
	}
	if !a.CreatedAt.IsZero() {
		v.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// GetActivitiesDeps holds dependencies for the activity projections.
type GetActivitiesDeps struct {
	ActivityStore ActivityStore
}

// QueryGetActivities returns every activity keyed by name.
// PRE: none
// POST: one entry per stored activity
func QueryGetActivities(ctx context.Context, deps GetActivitiesDeps) (map[string]ActivityView, error) {
	list, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ActivityView, len(list))
	for _, a := range list {
		out[a.Name] = NewActivityView(a)
	}
	return out, nil
}

// QueryGetActivity returns a single activity.
func QueryGetActivity(ctx context.Context, name string, deps GetActivitiesDeps) (ActivityView, error) {
	a, err := deps.ActivityStore.Get(ctx, name)
	if err != nil {
		return ActivityView{}, err
	}
	return NewActivityView(a), nil
}

// RequestView is the API shape of a membership request.
type RequestView struct {
	ID        string `json:"id"`
	Activity  string `json:"activity"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	DecidedAt string `json:"decided_at,omitempty"`
	DecidedBy string `json:"decided_by,omitempty"`
}

// GetRequestsQuery carries input for the membership request projection.
type GetRequestsQuery struct {
	ActivityName string
	Status       string // empty lists every status
}

// QueryGetRequests lists membership requests of an activity, newest first.
func QueryGetRequests(ctx context.Context, query GetRequestsQuery, deps GetActivitiesDeps) ([]RequestView, error) {
	a, err := deps.ActivityStore.Get(ctx, query.ActivityName)
	if err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(query.Status))

	out := make([]RequestView, 0, len(a.Requests))
	for i := len(a.Requests) - 1; i >= 0; i-- {
		r := a.Requests[i]
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, RequestView{
			ID:        r.ID,
			Activity:  a.Name,
			Email:     r.Email,
			Status:    r.Status,
			CreatedAt: formatTime(r.CreatedAt),
			DecidedAt: formatTime(r.DecidedAt),
			DecidedBy: r.DecidedBy,
		})
	}
	// Filing order breaks ties between requests created in the same instant.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}
