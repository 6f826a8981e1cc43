package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/club"
)

// EventDeps holds dependencies shared by the club event orchestrators.
type EventDeps struct {
	EventStore EventStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// CreateEventInput carries input for the create event orchestrator.
type CreateEventInput struct {
	ClubID          string
	Name            string
	Description     string
	Date            string
	Time            string
	Location        string
	MaxParticipants int // 0 means unlimited
}

// ExecuteCreateEvent schedules an event under a club.
// PRE: club exists; Name is non-empty; MaxParticipants >= 0
// POST: event persisted at version 1 with an empty roster
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps EventDeps) (club.Event, error) {
	e := club.Event{
		ID:              deps.GenerateID(),
		ClubID:          input.ClubID,
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		Date:            strings.TrimSpace(input.Date),
		Time:            strings.TrimSpace(input.Time),
		Location:        strings.TrimSpace(input.Location),
		MaxParticipants: input.MaxParticipants,
		CreatedAt:       deps.Now(),
	}
	if err := e.Validate(); err != nil {
		return club.Event{}, err
	}
	saved, err := deps.EventStore.SaveEvent(ctx, e)
	if err != nil {
		return club.Event{}, err
	}
	slog.Info("club_event", "event", "event_created", "club_id", saved.ClubID, "event_id", saved.ID, "name", saved.Name)
	return saved, nil
}

// UpdateEventInput carries input for the update event orchestrator. Nil fields are left unchanged.
type UpdateEventInput struct {
	ClubID          string
	EventID         string
	Name            *string
	Description     *string
	Date            *string
	Time            *string
	Location        *string
	MaxParticipants *int
}

// ExecuteUpdateEvent applies a partial update to an event.
// INVARIANT: a capped event is never resized below its roster
func ExecuteUpdateEvent(ctx context.Context, input UpdateEventInput, deps EventDeps) (club.Event, error) {
	saved, err := mutateEvent(ctx, deps.EventStore, input.ClubID, input.EventID, func(e *club.Event) error {
		setTrimmed(&e.Name, input.Name)
		setTrimmed(&e.Description, input.Description)
		setTrimmed(&e.Date, input.Date)
		setTrimmed(&e.Time, input.Time)
		setTrimmed(&e.Location, input.Location)
		if input.MaxParticipants != nil {
			if err := e.Resize(*input.MaxParticipants); err != nil {
				if errors.Is(err, club.ErrCapacityBelowRoster) {
					return &CapacityError{Minimum: len(e.Participants), Err: err}
				}
				return err
			}
		}
		return e.Validate()
	})
	if err != nil {
		return club.Event{}, err
	}
	slog.Info("club_event", "event", "event_updated", "club_id", saved.ClubID, "event_id", saved.ID, "version", saved.Version)
	return saved, nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ExecuteDeleteEvent removes an event and its roster from a club.
func ExecuteDeleteEvent(ctx context.Context, clubID, eventID string, deps EventDeps) error {
	if err := deps.EventStore.DeleteEvent(ctx, clubID, eventID); err != nil {
		return err
	}
	slog.Info("club_event", "event", "event_deleted", "club_id", clubID, "event_id", eventID)
	return nil
}

// EventRegistrationInput carries input for registering or unregistering a participant.
type EventRegistrationInput struct {
	ClubID  string
	EventID string
	Email   string
}

// ExecuteRegisterForEvent adds Email to the event roster.
// INVARIANT: a capped event never exceeds MaxParticipants
func ExecuteRegisterForEvent(ctx context.Context, input EventRegistrationInput, deps EventDeps) (club.Event, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return club.Event{}, err
	}
	saved, err := mutateEvent(ctx, deps.EventStore, input.ClubID, input.EventID, func(e *club.Event) error {
		return e.Register(email, deps.Now())
	})
	if err != nil {
		return club.Event{}, err
	}
	slog.Info("club_event", "event", "event_registration", "event_id", saved.ID, "email", email)
	return saved, nil
}

// ExecuteUnregisterFromEvent removes Email from the event roster.
func ExecuteUnregisterFromEvent(ctx context.Context, input EventRegistrationInput, deps EventDeps) (club.Event, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return club.Event{}, err
	}
	saved, err := mutateEvent(ctx, deps.EventStore, input.ClubID, input.EventID, func(e *club.Event) error {
		return e.Unregister(email)
	})
	if err != nil {
		return club.Event{}, err
	}
	slog.Info("club_event", "event", "event_unregistration", "event_id", saved.ID, "email", email)
	return saved, nil
}
