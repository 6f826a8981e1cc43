package projections

import (
	"context"

	domainClub "schoolhub/internal/domain/club"
)

// EventView is the API shape of a club event. Title mirrors Name for older clients.
type EventView struct {
	ID              string   `json:"id"`
	ClubID          string   `json:"club_id"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Location        string   `json:"location"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
	SpotsLeft       int      `json:"spots_left"` // -1 when unlimited
	Version         int64    `json:"version"`
}

// NewEventView builds the API view of e.
func NewEventView(e domainClub.Event) EventView {
	return EventView{
		ID:              e.ID,
		ClubID:          e.ClubID,
		Name:            e.Name,
		Title:           e.Name,
		Description:     e.Description,
		Date:            e.Date,
		Time:            e.Time,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		Participants:    e.ParticipantEmails(),
		SpotsLeft:       e.SpotsLeft(),
		Version:         e.Version,
	}
}

// ClubView is the API shape of a club with its events.
type ClubView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Members     []string    `json:"members"`
	Events      []EventView `json:"events"`
	Version     int64       `json:"version"`
	CreatedAt   string      `json:"created_at"`
}

// NewClubView builds the API view of c with its events.
func NewClubView(c domainClub.Club, events []domainClub.Event) ClubView {
	v := ClubView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Members:     c.MemberEmails(),
		Events:      make([]EventView, 0, len(events)),
		Version:     c.Version,
		CreatedAt:   formatTime(c.CreatedAt),
	}
	for _, e := range events {
		v.Events = append(v.Events, NewEventView(e))
	}
	return v
}

// GetClubsDeps holds dependencies for the club projections.
type GetClubsDeps struct {
	ClubStore ClubStore
}

// QueryGetClubs returns every club keyed by ID, events included.
func QueryGetClubs(ctx context.Context, deps GetClubsDeps) (map[string]ClubView, error) {
	clubs, err := deps.ClubStore.List(ctx)
	if err != nil {
		return nil, err
	}
	events, err := deps.ClubStore.ListEvents(ctx, "")
	if err != nil {
		return nil, err
	}
	byClub := make(map[string][]domainClub.Event)
	for _, e := range events {
		byClub[e.ClubID] = append(byClub[e.ClubID], e)
	}
	out := make(map[string]ClubView, len(clubs))
	for _, c := range clubs {
		out[c.ID] = NewClubView(c, byClub[c.ID])
	}
	return out, nil
}

// QueryGetClub returns one club with its events.
func QueryGetClub(ctx context.Context, id string, deps GetClubsDeps) (ClubView, error) {
	c, err := deps.ClubStore.Get(ctx, id)
	if err != nil {
		return ClubView{}, err
	}
	events, err := deps.ClubStore.ListEvents(ctx, id)
	if err != nil {
		return ClubView{}, err
	}
	return NewClubView(c, events), nil
}

// QueryGetClubMembers returns the member emails of a club in join order.
func QueryGetClubMembers(ctx context.Context, id string, deps GetClubsDeps) ([]string, error) {
	c, err := deps.ClubStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.MemberEmails(), nil
}

// QueryGetEvents lists the events of a club.
// PRE: club exists
func QueryGetEvents(ctx context.Context, clubID string, deps GetClubsDeps) ([]EventView, error) {
	if _, err := deps.ClubStore.Get(ctx, clubID); err != nil {
		return nil, err
	}
	events, err := deps.ClubStore.ListEvents(ctx, clubID)
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventView(e))
	}
	return out, nil
}

// QueryGetEvent returns one event of a club.
func QueryGetEvent(ctx context.Context, clubID, eventID string, deps GetClubsDeps) (EventView, error) {
	e, err := deps.ClubStore.GetEvent(ctx, clubID, eventID)
	if err != nil {
		return EventView{}, err
	}
	return NewEventView(e), nil
}
