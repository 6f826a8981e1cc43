package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/activity"
)

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	ActivityName string
	Email        string
}

// SignupResult carries the outcome of a signup. Pending is set when the
// activity requires approval and a membership request was filed instead.
type SignupResult struct {
	Activity activity.Activity
	Request  activity.Request
	Pending  bool
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteSignup adds a student to an activity, or files a membership request
// when the activity requires approval.
// PRE: ActivityName names an existing activity; Email contains '@'
// POST: Email is a participant, or has a pending request
// INVARIANT: participants never exceed max_participants
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return SignupResult{}, err
	}

	var res SignupResult
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.ActivityName, func(a *activity.Activity) error {
		res = SignupResult{}
		if a.RequiresApproval {
			req, err := a.RequestMembership(deps.GenerateID(), email, deps.Now())
			if err != nil {
				return err
			}
			res.Request, res.Pending = req, true
			return nil
		}
		return a.SignUp(email, deps.Now())
	})
	if err != nil {
		slog.Info("activity_event", "event", "signup_rejected", "activity", input.ActivityName, "email", email, "reason", err.Error())
		return SignupResult{}, err
	}
	res.Activity = saved

	if res.Pending {
		slog.Info("activity_event", "event", "membership_requested", "activity", saved.Name, "email", email, "request_id", res.Request.ID)
	} else {
		slog.Info("activity_event", "event", "signup", "activity", saved.Name, "email", email, "participants", len(saved.Participants))
	}
	return res, nil
}

// UnregisterInput carries input for the unregister orchestrator.
type UnregisterInput struct {
	ActivityName string
	Email        string
}

// UnregisterDeps holds dependencies for Unregister.
type UnregisterDeps struct {
	ActivityStore ActivityStoreForOrchestrator
}

// ExecuteUnregister removes a student and their role from an activity.
// PRE: Email is a participant
// POST: Email is not a participant
func ExecuteUnregister(ctx context.Context, input UnregisterInput, deps UnregisterDeps) (activity.Activity, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return activity.Activity{}, err
	}
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.ActivityName, func(a *activity.Activity) error {
		return a.Unregister(email)
	})
	if err != nil {
		return activity.Activity{}, err
	}
	slog.Info("activity_event", "event", "unregister", "activity", saved.Name, "email", email)
	return saved, nil
}
