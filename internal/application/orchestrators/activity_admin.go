package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"schoolhub/internal/domain/activity"
)

// --- Create Activity ---

// CreateActivityInput carries input for the create activity orchestrator.
type CreateActivityInput struct {
	Name             string
	Description      string
	Schedule         string
	MaxParticipants  int
	RequiresApproval bool
}

// CreateActivityDeps holds dependencies for CreateActivity.
type CreateActivityDeps struct {
	ActivityStore ActivityStoreForOrchestrator
	Now           func() time.Time
}

// ExecuteCreateActivity adds a new activity with an empty roster.
// PRE: Name is unique; MaxParticipants >= 1
// POST: Activity persisted at version 1
func ExecuteCreateActivity(ctx context.Context, input CreateActivityInput, deps CreateActivityDeps) (activity.Activity, error) {
	a := activity.Activity{
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		Schedule:         strings.TrimSpace(input.Schedule),
		MaxParticipants:  input.MaxParticipants,
		RequiresApproval: input.RequiresApproval,
		CreatedAt:        deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return activity.Activity{}, err
	}
	saved, err := deps.ActivityStore.Save(ctx, a)
	if err != nil {
		return activity.Activity{}, err
	}
	slog.Info("activity_event", "event", "activity_created", "activity", saved.Name, "max_participants", saved.MaxParticipants)
	return saved, nil
}

// --- Update Activity ---

// UpdateActivityInput carries input for the update activity orchestrator.
// Nil fields are left unchanged.
type UpdateActivityInput struct {
	Name             string
	Description      *string
	Schedule         *string
	MaxParticipants  *int
	RequiresApproval *bool
}

// UpdateActivityDeps holds dependencies for UpdateActivity.
type UpdateActivityDeps struct {
	ActivityStore ActivityStoreForOrchestrator
}

// ExecuteUpdateActivity applies a partial update.
// PRE: activity exists
// POST: provided fields are updated, version incremented
// INVARIANT: capacity is never reduced below the current participant count
func ExecuteUpdateActivity(ctx context.Context, input UpdateActivityInput, deps UpdateActivityDeps) (activity.Activity, error) {
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.Name, func(a *activity.Activity) error {
		if input.Description != nil {
			a.Description = strings.TrimSpace(*input.Description)
		}
		if input.Schedule != nil {
			a.Schedule = strings.TrimSpace(*input.Schedule)
		}
		if input.RequiresApproval != nil {
			a.RequiresApproval = *input.RequiresApproval
		}
		if input.MaxParticipants != nil {
			if err := a.Resize(*input.MaxParticipants); err != nil {
				if errors.Is(err, activity.ErrCapacityBelowRoster) {
					return &CapacityError{Minimum: len(a.Participants), Err: err}
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return activity.Activity{}, err
	}
	slog.Info("activity_event", "event", "activity_updated", "activity", saved.Name, "version", saved.Version)
	return saved, nil
}

// --- Delete Activity ---

// ActivityDeleter removes activities.
type ActivityDeleter interface {
	Delete(ctx context.Context, name string) error
}

// DeleteActivityDeps holds dependencies for DeleteActivity.
type DeleteActivityDeps struct {
	ActivityStore ActivityDeleter
}

// ExecuteDeleteActivity removes an activity with its participants and requests.
// PRE: activity exists
// POST: activity no longer exists
func ExecuteDeleteActivity(ctx context.Context, name string, deps DeleteActivityDeps) error {
	if err := deps.ActivityStore.Delete(ctx, name); err != nil {
		return err
	}
	slog.Info("activity_event", "event", "activity_deleted", "activity", name)
	return nil
}
