package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/activity"
	"schoolhub/internal/domain/notification"
)

// --- Request Membership ---

// RequestMembershipInput carries input for the request membership orchestrator.
type RequestMembershipInput struct {
	ActivityName string
	Email        string
}

// RequestMembershipDeps holds dependencies for RequestMembership.
type RequestMembershipDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteRequestMembership files a pending request to join an activity.
// PRE: Email is neither a participant nor already pending
// POST: a new pending request with a fresh ID exists
func ExecuteRequestMembership(ctx context.Context, input RequestMembershipInput, deps RequestMembershipDeps) (activity.Request, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return activity.Request{}, err
	}
	var req activity.Request
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.ActivityName, func(a *activity.Activity) error {
		r, err := a.RequestMembership(deps.GenerateID(), email, deps.Now())
		req = r
		return err
	})
	if err != nil {
		return activity.Request{}, err
	}
	slog.Info("activity_event", "event", "membership_requested", "activity", saved.Name, "email", email, "request_id", req.ID)
	return req, nil
}

// --- Decide Request ---

// DecideRequestInput carries input for approving or rejecting a request.
type DecideRequestInput struct {
	ActivityName string
	Email        string
	Approve      bool
	DecidedBy    string // AccountID of the deciding staff member
}

// DecideRequestResult carries the decided request and the saved activity.
type DecideRequestResult struct {
	Activity activity.Activity
	Request  activity.Request
}

// DecideRequestDeps holds dependencies for DecideRequest.
type DecideRequestDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	Notifications NotificationSaver
	Publisher     NotificationPublisher // optional
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteDecideRequest approves or rejects the pending request of Email.
// A decided request stays decided; a new request is needed to try again.
// PRE: a pending request for Email exists
// POST: request is approved (Email is a participant) or rejected (participants untouched);
// the requester gets a membership notification
func ExecuteDecideRequest(ctx context.Context, input DecideRequestInput, deps DecideRequestDeps) (DecideRequestResult, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return DecideRequestResult{}, err
	}

	var req activity.Request
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.ActivityName, func(a *activity.Activity) error {
		var err error
		if input.Approve {
			req, err = a.ApproveRequest(email, input.DecidedBy, deps.Now())
		} else {
			req, err = a.RejectRequest(email, input.DecidedBy, deps.Now())
		}
		return err
	})
	if err != nil {
		return DecideRequestResult{}, err
	}
	slog.Info("activity_event", "event", "request_"+req.Status, "activity", saved.Name, "email", email, "decided_by", input.DecidedBy)

	if deps.Notifications != nil {
		n := notification.Notification{
			ID:        deps.GenerateID(),
			Recipient: email,
			Message:   fmt.Sprintf("Your request to join %s was %s.", saved.Name, req.Status),
			Type:      notification.TypeMembership,
			CreatedAt: deps.Now(),
		}
		// The decision is committed; notification failures are logged only.
		if err := deliverNotification(ctx, deps.Notifications, deps.Publisher, n); err != nil {
			slog.Error("notification_event", "event", "membership_notify_failed", "email", email, "error", err)
		}
	}
	return DecideRequestResult{Activity: saved, Request: req}, nil
}
