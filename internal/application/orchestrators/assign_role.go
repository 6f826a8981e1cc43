package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/activity"
)

// AssignRoleInput carries input for the assign role orchestrator.
type AssignRoleInput struct {
	ActivityName string
	Email        string
	Role         string
}

// AssignRoleDeps holds dependencies for AssignRole.
type AssignRoleDeps struct {
	ActivityStore ActivityStoreForOrchestrator
}

// ExecuteAssignRole sets the activity role of a participant, replacing any previous one.
// PRE: Email is a participant; Role is one of activity.ValidRoles
// POST: RoleOf(Email) == Role
func ExecuteAssignRole(ctx context.Context, input AssignRoleInput, deps AssignRoleDeps) (activity.Activity, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return activity.Activity{}, err
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	saved, err := mutateActivity(ctx, deps.ActivityStore, input.ActivityName, func(a *activity.Activity) error {
		return a.AssignRole(email, role)
	})
	if err != nil {
		return activity.Activity{}, err
	}
	slog.Info("activity_event", "event", "role_assigned", "activity", saved.Name, "email", email, "role", role)
	return saved, nil
}
