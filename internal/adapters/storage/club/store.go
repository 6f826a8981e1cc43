package club

import (
	"context"

	domain "schoolhub/internal/domain/club"
)

// Store persists Club aggregates and the events owned by them.
type Store interface {
	Get(ctx context.Context, id string) (domain.Club, error)
	List(ctx context.Context) ([]domain.Club, error)
	Save(ctx context.Context, value domain.Club) (domain.Club, error)
	// Delete removes the club together with its members and events.
	Delete(ctx context.Context, id string) error

	EventStore
}

// EventStore persists club events and their rosters.
type EventStore interface {
	GetEvent(ctx context.Context, clubID, eventID string) (domain.Event, error)
	// ListEvents returns events of clubID, or of every club when clubID is empty.
	ListEvents(ctx context.Context, clubID string) ([]domain.Event, error)
	SaveEvent(ctx context.Context, value domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, clubID, eventID string) error
}
