package notification

import (
	"errors"
	"strings"
	"time"
)

// Notification types
const (
	TypeEvent      = "event"
	TypeMembership = "membership"
	TypeSystem     = "system"
)

// ValidTypes contains all valid notification types.
var ValidTypes = []string{TypeEvent, TypeMembership, TypeSystem}

// Domain errors
var (
	ErrNotFound       = errors.New("notification not found")
	ErrEmptyID        = errors.New("notification ID is required")
	ErrEmptyRecipient = errors.New("recipient email is required")
	ErrEmptyMessage   = errors.New("notification message cannot be empty")
	ErrInvalidType    = errors.New("notification type must be one of: event, membership, system")
)

// Notification is one per-recipient entry in a notification queue.
// ClubID and EventID are set for event broadcasts only.
type Notification struct {
	ID        string
	Recipient string
	Message   string
	Type      string
	ClubID    string
	EventID   string
	CreatedAt time.Time
	ReadAt    time.Time
}

// Validate checks if the Notification has valid data.
// PRE: Notification struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if n.Recipient == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(n.Message) == "" {
		return ErrEmptyMessage
	}
	for _, t := range ValidTypes {
		if n.Type == t {
			return nil
		}
	}
	return ErrInvalidType
}

// IsRead returns true if the notification has been read.
func (n *Notification) IsRead() bool {
	return !n.ReadAt.IsZero()
}

// MarkRead records when the notification was first read.
// POST: ReadAt is set; returns false if it was already set
// INVARIANT: ReadAt never changes once set
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead() {
		return false
	}
	n.ReadAt = now
	return true
}
