package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/club"
)

// ClubDeps holds dependencies shared by the club orchestrators.
type ClubDeps struct {
	ClubStore  ClubStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// CreateClubInput carries input for the create club orchestrator.
type CreateClubInput struct {
	Name        string
	Description string
}

// ExecuteCreateClub creates a club without members.
// PRE: Name is non-empty
// POST: club persisted at version 1 with a generated ID
func ExecuteCreateClub(ctx context.Context, input CreateClubInput, deps ClubDeps) (club.Club, error) {
	c := club.Club{
		ID:          deps.GenerateID(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   deps.Now(),
	}
	if err := c.Validate(); err != nil {
		return club.Club{}, err
	}
	saved, err := deps.ClubStore.Save(ctx, c)
	if err != nil {
		return club.Club{}, err
	}
	slog.Info("club_event", "event", "club_created", "club_id", saved.ID, "name", saved.Name)
	return saved, nil
}

// UpdateClubInput carries input for the update club orchestrator. Nil fields are left unchanged.
type UpdateClubInput struct {
	ID          string
	Name        *string
	Description *string
}

// ExecuteUpdateClub changes the name or description of a club.
func ExecuteUpdateClub(ctx context.Context, input UpdateClubInput, deps ClubDeps) (club.Club, error) {
	saved, err := mutateClub(ctx, deps.ClubStore, input.ID, func(c *club.Club) error {
		if input.Name != nil {
			c.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			c.Description = strings.TrimSpace(*input.Description)
		}
		return c.Validate()
	})
	if err != nil {
		return club.Club{}, err
	}
	slog.Info("club_event", "event", "club_updated", "club_id", saved.ID, "version", saved.Version)
	return saved, nil
}

// ExecuteDeleteClub removes a club with its members, events and rosters.
// POST: no event of the club remains
func ExecuteDeleteClub(ctx context.Context, id string, deps ClubDeps) error {
	if err := deps.ClubStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("club_event", "event", "club_deleted", "club_id", id)
	return nil
}

// ClubMembershipInput carries input for joining or leaving a club.
type ClubMembershipInput struct {
	ClubID string
	Email  string
}

// ExecuteJoinClub adds Email to the club's members.
// INVARIANT: member emails are unique per club
func ExecuteJoinClub(ctx context.Context, input ClubMembershipInput, deps ClubDeps) (club.Club, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return club.Club{}, err
	}
	saved, err := mutateClub(ctx, deps.ClubStore, input.ClubID, func(c *club.Club) error {
		return c.AddMember(email, deps.Now())
	})
	if err != nil {
		return club.Club{}, err
	}
	slog.Info("club_event", "event", "member_added", "club_id", saved.ID, "email", email)
	return saved, nil
}

// ExecuteLeaveClub removes Email from the club's members.
func ExecuteLeaveClub(ctx context.Context, input ClubMembershipInput, deps ClubDeps) (club.Club, error) {
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return club.Club{}, err
	}
	saved, err := mutateClub(ctx, deps.ClubStore, input.ClubID, func(c *club.Club) error {
		return c.RemoveMember(email)
	})
	if err != nil {
		return club.Club{}, err
	}
	slog.Info("club_event", "event", "member_removed", "club_id", saved.ID, "email", email)
	return saved, nil
}
