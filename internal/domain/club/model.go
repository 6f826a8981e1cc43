package club

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 120
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrNotFound      = errors.New("club not found")
	ErrEmptyID       = errors.New("club ID is required")
	ErrEmptyName     = errors.New("club name cannot be empty")
	ErrNameTooLong   = errors.New("club name cannot exceed 120 characters")
	ErrDescTooLong   = errors.New("club description cannot exceed 2000 characters")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
	ErrConflict      = errors.New("club was modified concurrently")
)

// Member is one club member.
type Member struct {
	Email    string
	JoinedAt time.Time
}

// Club is an organization owning members and events.
// Events live in their own aggregate keyed by ClubID.
type Club struct {
	ID          string
	Name        string
	Description string
	Members     []Member
	Version     int64
	CreatedAt   time.Time
}

// Validate checks if the Club has valid data.
// PRE: Club struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Club) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(c.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	seen := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		if seen[m.Email] {
			return ErrAlreadyMember
		}
		seen[m.Email] = true
	}
	return nil
}

// HasMember reports whether email belongs to the club.
func (c *Club) HasMember(email string) bool {
	return c.indexOf(email) >= 0
}

// MemberEmails returns member emails in join order.
func (c *Club) MemberEmails() []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.Email)
	}
	return out
}

// AddMember appends email to the member list.
// PRE: email is normalized
// INVARIANT: member emails are unique
func (c *Club) AddMember(email string, now time.Time) error {
	if c.HasMember(email) {
		return ErrAlreadyMember
	}
	c.Members = append(c.Members, Member{Email: email, JoinedAt: now})
	return nil
}

// RemoveMember drops email from the member list.
func (c *Club) RemoveMember(email string) error {
	i := c.indexOf(email)
	if i < 0 {
		return ErrNotMember
	}
	c.Members = append(c.Members[:i], c.Members[i+1:]...)
	return nil
}

func (c *Club) indexOf(email string) int {
	for i, m := range c.Members {
		if m.Email == email {
			return i
		}
	}
	return -1
}
