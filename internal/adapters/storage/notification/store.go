package notification

import (
	"context"
	"time"

	domain "schoolhub/internal/domain/notification"
)

// Store persists per-recipient notifications.
type Store interface {
	Save(ctx context.Context, value domain.Notification) error
	GetByID(ctx context.Context, id string) (domain.Notification, error)
	ListByRecipient(ctx context.Context, email string, unreadOnly bool) ([]domain.Notification, error)
	CountUnread(ctx context.Context, email string) (int, error)
	// MarkRead sets read_at only when it is still unset.
	MarkRead(ctx context.Context, id string, at time.Time) error
	// MarkAllRead returns how many notifications changed state.
	MarkAllRead(ctx context.Context, email string, at time.Time) (int, error)
}
