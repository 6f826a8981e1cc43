package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/notification"
)

// NotificationStoreForOrchestrator defines the store interface needed by notification orchestrators.
type NotificationStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (notification.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, email string, at time.Time) (int, error)
}

// NotificationDeps holds dependencies for the notification orchestrators.
type NotificationDeps struct {
	NotificationStore NotificationStoreForOrchestrator
	Now               func() time.Time
}

// MarkNotificationReadInput carries input for marking one notification read.
type MarkNotificationReadInput struct {
	ID    string
	Email string
}

// ExecuteMarkNotificationRead marks a notification of Email as read.
// Marking an already read notification succeeds and keeps its first read time.
// PRE: the notification belongs to Email
// POST: notification is read
func ExecuteMarkNotificationRead(ctx context.Context, input MarkNotificationReadInput, deps NotificationDeps) (notification.Notification, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return notification.Notification{}, err
	}
	n, err := deps.NotificationStore.GetByID(ctx, input.ID)
	if err != nil {
		return notification.Notification{}, err
	}
	if n.Recipient != email {
		return notification.Notification{}, notification.ErrNotFound
	}
	now := deps.Now()
	if !n.MarkRead(now) {
		return n, nil
	}
	if err := deps.NotificationStore.MarkRead(ctx, n.ID, now); err != nil {
		return notification.Notification{}, err
	}
	slog.Info("notification_event", "event", "marked_read", "notification_id", n.ID, "email", email)
	// A concurrent reader may have won; the stored read time is authoritative.
	return deps.NotificationStore.GetByID(ctx, n.ID)
}

// ExecuteMarkAllNotificationsRead marks every unread notification of email and
// returns how many changed.
func ExecuteMarkAllNotificationsRead(ctx context.Context, email string, deps NotificationDeps) (int, error) {
	email, err := account.NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	count, err := deps.NotificationStore.MarkAllRead(ctx, email, deps.Now())
	if err != nil {
		return 0, err
	}
	slog.Info("notification_event", "event", "marked_all_read", "email", email, "count", count)
	return count, nil
}
