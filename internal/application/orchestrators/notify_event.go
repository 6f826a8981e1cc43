package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"schoolhub/internal/domain/club"
	"schoolhub/internal/domain/notification"
)

// NotificationSaver persists notifications.
type NotificationSaver interface {
	Save(ctx context.Context, n notification.Notification) error
}

// NotificationPublisher pushes a new notification to live connections of its recipient.
type NotificationPublisher interface {
	PublishNotification(email string, n PushedNotification) int
}

// BroadcastMailer emails one Markdown message to many recipients and
// reports how many were accepted.
type BroadcastMailer interface {
	SendBroadcast(ctx context.Context, recipients []string, subject, markdownBody string) (int, error)
}

// PushedNotification is the websocket frame payload for a new notification.
type PushedNotification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	ClubID    string `json:"club_id,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// deliverNotification stores n and pushes it to any live connection.
// Publisher may be nil.
func deliverNotification(ctx context.Context, store NotificationSaver, pub NotificationPublisher, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := store.Save(ctx, n); err != nil {
		return err
	}
	if pub != nil {
		pub.PublishNotification(n.Recipient, PushedNotification{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			ClubID:    n.ClubID,
			EventID:   n.EventID,
			Timestamp: n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil
}

// EventLookup reads one club event.
type EventLookup interface {
	GetEvent(ctx context.Context, clubID, eventID string) (club.Event, error)
}

// SendEventNotificationInput carries input for the event broadcast orchestrator.
type SendEventNotificationInput struct {
	ClubID  string
	EventID string
	Message string
}

// SendEventNotificationResult reports how many participants were notified.
type SendEventNotificationResult struct {
	Recipients int
	Emailed    int
}

// SendEventNotificationDeps holds dependencies for SendEventNotification.
type SendEventNotificationDeps struct {
	EventStore    EventLookup
	Notifications NotificationSaver
	Publisher     NotificationPublisher // optional
	Mailer        BroadcastMailer       // optional
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteSendEventNotification gives every current participant of an event
// its own unread notification, then emails the same message in one batch.
// Notifications already stored stay stored if a later recipient fails.
// Email failures are logged and never fail the call.
// PRE: Message is non-empty; event exists under ClubID
// POST: one event notification per participant
func ExecuteSendEventNotification(ctx context.Context, input SendEventNotificationInput, deps SendEventNotificationDeps) (SendEventNotificationResult, error) {
	msg := strings.TrimSpace(input.Message)
	if msg == "" {
		return SendEventNotificationResult{}, notification.ErrEmptyMessage
	}
	ev, err := deps.EventStore.GetEvent(ctx, input.ClubID, input.EventID)
	if err != nil {
		return SendEventNotificationResult{}, err
	}

	now := deps.Now()
	recipients := ev.ParticipantEmails()
	for _, to := range recipients {
		n := notification.Notification{
			ID:        deps.GenerateID(),
			Recipient: to,
			Message:   msg,
			Type:      notification.TypeEvent,
			ClubID:    ev.ClubID,
			EventID:   ev.ID,
			CreatedAt: now,
		}
		if err := deliverNotification(ctx, deps.Notifications, deps.Publisher, n); err != nil {
			return SendEventNotificationResult{}, fmt.Errorf("notify %s: %w", to, err)
		}
	}
	res := SendEventNotificationResult{Recipients: len(recipients)}
	slog.Info("notification_event", "event", "event_broadcast", "club_id", ev.ClubID, "event_id", ev.ID, "recipients", res.Recipients)

	if deps.Mailer != nil && len(recipients) > 0 {
		sent, err := deps.Mailer.SendBroadcast(ctx, recipients, "Update: "+ev.Name, msg)
		if err != nil {
			slog.Error("email_event", "event", "broadcast_failed", "event_name", ev.Name, "error", err)
		}
		res.Emailed = sent
	}
	return res, nil
}
