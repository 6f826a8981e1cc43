package client

import "fmt"

// APIError is a non-2xx response. Detail is the server's message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("schoolhub: %d %s", e.Status, e.Detail)
}

// Message is the success envelope of mutations.
type Message struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Version int64  `json:"version,omitempty"`
}

// Token is returned by Login and Register.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// Me describes the signed-in account.
type Me struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Activity is one school activity.
type Activity struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Schedule         string            `json:"schedule"`
	MaxParticipants  int               `json:"max_participants"`
	Participants     []string          `json:"participants"`
	Roles            map[string]string `json:"roles"`
	RequiresApproval bool              `json:"requires_approval"`
	PendingRequests  int               `json:"pending_requests"`
	Version          int64             `json:"version"`
	CreatedAt        string            `json:"created_at"`
}

// ActivityInput creates an activity.
type ActivityInput struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Schedule         string `json:"schedule,omitempty"`
	MaxParticipants  int    `json:"max_participants"`
	RequiresApproval bool   `json:"requires_approval,omitempty"`
}

// ActivityUpdate changes an activity. Nil fields are left unchanged.
type ActivityUpdate struct {
	Description      *string `json:"description,omitempty"`
	Schedule         *string `json:"schedule,omitempty"`
	MaxParticipants  *int    `json:"max_participants,omitempty"`
	RequiresApproval *bool   `json:"requires_approval,omitempty"`
}

// Request is a membership request.
type Request struct {
	ID        string `json:"id"`
	Activity  string `json:"activity"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	DecidedAt string `json:"decided_at,omitempty"`
	DecidedBy string `json:"decided_by,omitempty"`
}

// Club owns members and events.
type Club struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
	Events      []Event  `json:"events"`
	Version     int64    `json:"version"`
	CreatedAt   string   `json:"created_at"`
}

// ClubInput creates or updates a club. Nil fields are left unchanged on update.
type ClubInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Event is a scheduled occurrence under a club.
type Event struct {
	ID              string   `json:"id"`
	ClubID          string   `json:"club_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Location        string   `json:"location"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
	SpotsLeft       int      `json:"spots_left"`
	Version         int64    `json:"version"`
}

// EventInput creates or updates an event. Nil fields are left unchanged on update.
type EventInput struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	Location        *string `json:"location,omitempty"`
	MaxParticipants *int    `json:"max_participants,omitempty"`
}

// Notification is one delivered message.
type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	ClubID    string `json:"club_id,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
	ReadAt    string `json:"read_at,omitempty"`
}

// Statistics is the public occupancy summary.
type Statistics struct {
	Summary struct {
		TotalActivities      int     `json:"total_activities"`
		TotalParticipants    int     `json:"total_participants"`
		TotalCapacity        int     `json:"total_capacity"`
		OverallOccupancyRate float64 `json:"overall_occupancy_rate"`
	} `json:"summary"`
	Activities []struct {
		Name             string  `json:"name"`
		ParticipantCount int     `json:"participant_count"`
		MaxParticipants  int     `json:"max_participants"`
		AvailableSpots   int     `json:"available_spots"`
		OccupancyRate    float64 `json:"occupancy_rate"`
		OccupancyLevel   string  `json:"occupancy_level"`
	} `json:"activities"`
}

// Ptr returns a pointer to v, for building partial updates.
func Ptr[T any](v T) *T { return &v }
