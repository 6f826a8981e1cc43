package club

import (
	"errors"
	"strings"
	"time"
)

// Event errors
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEmptyEventID        = errors.New("event ID is required")
	ErrEmptyEventName      = errors.New("event name cannot be empty")
	ErrInvalidCapacity     = errors.New("max participants cannot be negative")
	ErrCapacityBelowRoster = errors.New("capacity cannot be reduced below current participants")
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrNotRegistered       = errors.New("not registered for this event")
	ErrEventFull           = errors.New("event is full")
	ErrEventConflict       = errors.New("event was modified concurrently")
)

// Registration is one event participant.
type Registration struct {
	Email        string
	RegisteredAt time.Time
}

// Event is a scheduled occurrence under a club with its own roster.
// MaxParticipants of zero means unlimited.
type Event struct {
	ID              string
	ClubID          string
	Name            string
	Description     string
	Date            string // as entered, e.g. 2026-10-02 or 2026-10-02T18:00
	Time            string
	Location        string
	MaxParticipants int
	Participants    []Registration
	Version         int64
	CreatedAt       time.Time
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyEventID
	}
	if e.ClubID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyEventName
	}
	if e.MaxParticipants < 0 {
		return ErrInvalidCapacity
	}
	if e.MaxParticipants > 0 && len(e.Participants) > e.MaxParticipants {
		return ErrCapacityBelowRoster
	}
	return nil
}

// IsFull reports whether a capped event has no seats left.
func (e *Event) IsFull() bool {
	return e.MaxParticipants > 0 && len(e.Participants) >= e.MaxParticipants
}

// SpotsLeft returns free seats, or -1 for unlimited events.
func (e *Event) SpotsLeft() int {
	if e.MaxParticipants == 0 {
		return -1
	}
	left := e.MaxParticipants - len(e.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// ParticipantEmails returns registered emails in order.
func (e *Event) ParticipantEmails() []string {
	out := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		out = append(out, p.Email)
	}
	return out
}

// Register adds email to the roster.
// INVARIANT: a capped event never exceeds MaxParticipants
func (e *Event) Register(email string, now time.Time) error {
	if e.indexOf(email) >= 0 {
		return ErrAlreadyRegistered
	}
	if e.IsFull() {
		return ErrEventFull
	}
	e.Participants = append(e.Participants, Registration{Email: email, RegisteredAt: now})
	return nil
}

// Unregister removes email from the roster.
func (e *Event) Unregister(email string) error {
	i := e.indexOf(email)
	if i < 0 {
		return ErrNotRegistered
	}
	e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
	return nil
}

// Resize changes the capacity; zero lifts the cap.
func (e *Event) Resize(max int) error {
	if max < 0 {
		return ErrInvalidCapacity
	}
	if max > 0 && max < len(e.Participants) {
		return ErrCapacityBelowRoster
	}
	e.MaxParticipants = max
	return nil
}

func (e *Event) indexOf(email string) int {
	for i, p := range e.Participants {
		if p.Email == email {
			return i
		}
	}
	return -1
}
