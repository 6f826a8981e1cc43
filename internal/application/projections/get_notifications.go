package projections

import (
	"context"

	domainNotification "schoolhub/internal/domain/notification"
)

// NotificationView is the API shape of a notification.
type NotificationView struct {
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

// NewNotificationView builds the API view of n.
func NewNotificationView(n domainNotification.Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		Recipient: n.Recipient,
		Message:   n.Message,
		Type:      n.Type,
		ClubID:    n.ClubID,
		EventID:   n.EventID,
		Timestamp: formatTime(n.CreatedAt),
		Read:      n.IsRead(),
		ReadAt:    formatTime(n.ReadAt),
	}
}

// GetNotificationsQuery carries input for the notification list projection.
type GetNotificationsQuery struct {
	Email      string
	UnreadOnly bool
}

// GetNotificationsDeps holds dependencies for the notification projections.
type GetNotificationsDeps struct {
	NotificationStore NotificationStore
}

// QueryGetNotifications lists notifications of one recipient, newest first.
// PRE: Email is normalized
func QueryGetNotifications(ctx context.Context, query GetNotificationsQuery, deps GetNotificationsDeps) ([]NotificationView, error) {
	list, err := deps.NotificationStore.ListByRecipient(ctx, query.Email, query.UnreadOnly)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationView, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationView(n))
	}
	return out, nil
}

// QueryGetUnreadCount returns how many notifications of email are unread.
func QueryGetUnreadCount(ctx context.Context, email string, deps GetNotificationsDeps) (int, error) {
	return deps.NotificationStore.CountUnread(ctx, email)
}
