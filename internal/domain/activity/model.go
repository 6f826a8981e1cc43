package activity

import (
	"errors"
	"strings"
	"time"
)

// Participant roles. RoleMember is implied for participants without an explicit role.
const (
	RoleMember    = "member"
	RoleLeader    = "leader"
	RoleCaptain   = "captain"
	RoleSecretary = "secretary"
	RoleTreasurer = "treasurer"
)

// ValidRoles contains all assignable participant roles.
var ValidRoles = []string{RoleMember, RoleLeader, RoleCaptain, RoleSecretary, RoleTreasurer}

// Domain errors
var (
	ErrNotFound            = errors.New("activity not found")
	ErrAlreadyExists       = errors.New("activity already exists")
	ErrEmptyName           = errors.New("activity name cannot be empty")
	ErrInvalidCapacity     = errors.New("max participants must be at least 1")
	ErrCapacityBelowRoster = errors.New("capacity cannot be reduced below current participants")
	ErrAlreadySignedUp     = errors.New("student is already signed up")
	ErrNotSignedUp         = errors.New("student is not signed up for this activity")
	ErrFull                = errors.New("activity is full")
	ErrInvalidRole         = errors.New("invalid role")
	ErrConflict            = errors.New("activity was modified concurrently")
)

// Participant is one signed-up student.
type Participant struct {
	Email    string
	Role     string // empty means RoleMember
	JoinedAt time.Time
}

// Activity is a school-offered group with bounded capacity.
// Name is the unique key. Version increases by one on every persisted change.
type Activity struct {
	Name             string
	Description      string
	Schedule         string
	MaxParticipants  int
	RequiresApproval bool
	Participants     []Participant
	Requests         []Request
	Version          int64
	CreatedAt        time.Time
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.MaxParticipants < 1 {
		return ErrInvalidCapacity
	}
	if len(a.Participants) > a.MaxParticipants {
		return ErrCapacityBelowRoster
	}
	seen := make(map[string]bool, len(a.Participants))
	for _, p := range a.Participants {
		if seen[p.Email] {
			return ErrAlreadySignedUp
		}
		seen[p.Email] = true
	}
	return nil
}

// IsFull reports whether no seats remain.
func (a *Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// SpotsLeft returns the number of free seats.
func (a *Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// HasParticipant reports whether email is signed up.
func (a *Activity) HasParticipant(email string) bool {
	return a.indexOf(email) >= 0
}

// Emails returns participant emails in join order.
func (a *Activity) Emails() []string {
	out := make([]string, 0, len(a.Participants))
	for _, p := range a.Participants {
		out = append(out, p.Email)
	}
	return out
}

// Roles returns the explicit role assignments keyed by email.
func (a *Activity) Roles() map[string]string {
	out := make(map[string]string)
	for _, p := range a.Participants {
		if p.Role != "" {
			out[p.Email] = p.Role
		}
	}
	return out
}

// RoleOf returns the role of a participant, defaulting to member.
func (a *Activity) RoleOf(email string) string {
	i := a.indexOf(email)
	if i < 0 || a.Participants[i].Role == "" {
		return RoleMember
	}
	return a.Participants[i].Role
}

// SignUp appends email to the participant list.
// PRE: email is normalized
// POST: email is the last participant
// INVARIANT: len(Participants) <= MaxParticipants
func (a *Activity) SignUp(email string, now time.Time) error {
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if a.IsFull() {
		return ErrFull
	}
	a.Participants = append(a.Participants, Participant{Email: email, JoinedAt: now})
	return nil
}

// Unregister removes email and its role assignment.
// PRE: email is normalized
// POST: email is no longer a participant
func (a *Activity) Unregister(email string) error {
	i := a.indexOf(email)
	if i < 0 {
		return ErrNotSignedUp
	}
	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	return nil
}

// Resize changes the capacity.
// PRE: max >= 1
// POST: MaxParticipants == max
// INVARIANT: capacity never drops below the current roster
func (a *Activity) Resize(max int) error {
	if max < 1 {
		return ErrInvalidCapacity
	}
	if max < len(a.Participants) {
		return ErrCapacityBelowRoster
	}
	a.MaxParticipants = max
	return nil
}

// AssignRole overwrites the role of an existing participant.
// PRE: role is one of ValidRoles
// POST: RoleOf(email) == role
func (a *Activity) AssignRole(email, role string) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}
	i := a.indexOf(email)
	if i < 0 {
		return ErrNotSignedUp
	}
	a.Participants[i].Role = role
	return nil
}

// IsValidRole reports whether role is assignable.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (a *Activity) indexOf(email string) int {
	for i, p := range a.Participants {
		if p.Email == email {
			return i
		}
	}
	return -1
}
