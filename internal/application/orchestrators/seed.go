package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/activity"
)

type seedActivity struct {
	Name         string
	Description  string
	Schedule     string
	Max          int
	Participants []string
}

// defaultActivities returns the catalogue a fresh school starts with.
func defaultActivities() []seedActivity {
	return []seedActivity{
		{"Chess Club", "Learn strategies and compete in chess tournaments", "Fridays, 3:30 PM - 5:00 PM", 12,
			[]string{"michael@mergington.edu", "daniel@mergington.edu"}},
		{"Programming Class", "Learn programming fundamentals and build software projects", "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", 20,
			[]string{"emma@mergington.edu", "sophia@mergington.edu"}},
		{"Gym Class", "Physical education and sports activities", "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM", 30,
			[]string{"john@mergington.edu", "olivia@mergington.edu"}},
		{"Soccer Team", "Join the school soccer team and compete in matches", "Tuesdays and Thursdays, 4:00 PM - 5:30 PM", 22,
			[]string{"liam@mergington.edu", "noah@mergington.edu"}},
		{"Basketball Team", "Practice and play basketball with the school team", "Wednesdays and Fridays, 3:30 PM - 5:00 PM", 15,
			[]string{"ava@mergington.edu", "mia@mergington.edu"}},
		{"Art Club", "Explore your creativity through painting and drawing", "Thursdays, 3:30 PM - 5:00 PM", 15,
			[]string{"amelia@mergington.edu", "harper@mergington.edu"}},
		{"Drama Club", "Act, direct, and produce plays and performances", "Mondays and Wednesdays, 4:00 PM - 5:30 PM", 20,
			[]string{"ella@mergington.edu", "scarlett@mergington.edu"}},
		{"Math Club", "Solve challenging problems and participate in math competitions", "Tuesdays, 3:30 PM - 4:30 PM", 10,
			[]string{"james@mergington.edu", "benjamin@mergington.edu"}},
		{"Debate Team", "Develop public speaking and argumentation skills", "Fridays, 4:00 PM - 5:30 PM", 12,
			[]string{"charlotte@mergington.edu", "henry@mergington.edu"}},
	}
}

// ActivitySeedStore defines the store interface needed by SeedActivities.
type ActivitySeedStore interface {
	List(ctx context.Context) ([]activity.Activity, error)
	Save(ctx context.Context, a activity.Activity) (activity.Activity, error)
}

// SeedActivitiesDeps holds dependencies for SeedActivities.
type SeedActivitiesDeps struct {
	ActivityStore ActivitySeedStore
	Now           func() time.Time
}

// ExecuteSeedActivities loads the default catalogue into an empty database.
// It is idempotent: any existing activity skips the whole seed.
// PRE: Database is migrated
// POST: at least one activity exists
func ExecuteSeedActivities(ctx context.Context, deps SeedActivitiesDeps) error {
	existing, err := deps.ActivityStore.List(ctx)
	if err != nil {
		return fmt.Errorf("seed activities: list: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := deps.Now()
	for _, def := range defaultActivities() {
		a := activity.Activity{
			Name:            def.Name,
			Description:     def.Description,
			Schedule:        def.Schedule,
			MaxParticipants: def.Max,
			CreatedAt:       now,
		}
		for _, email := range def.Participants {
			if err := a.SignUp(email, now); err != nil {
				return fmt.Errorf("seed activity %s: %w", def.Name, err)
			}
		}
		if _, err := deps.ActivityStore.Save(ctx, a); err != nil {
			return fmt.Errorf("seed activity %s: save: %w", def.Name, err)
		}
	}
	slog.Info("seed_event", "event", "activities_seeded", "count", len(defaultActivities()))
	return nil
}

// AdminSeedStore defines the store interface needed by SeedAdmin.
type AdminSeedStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, a account.Account) error
}

// SeedAdminInput carries the configured admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AdminSeedStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the admin account if it does not exist yet.
// An empty Email disables the seed.
// POST: an admin account with Email exists
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Email == "" {
		return nil
	}
	email, err := account.NormalizeEmail(input.Email)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	_, err = deps.AccountStore.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return fmt.Errorf("seed admin: lookup: %w", err)
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		FullName:  "Administrator",
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return fmt.Errorf("seed admin: set password: %w", err)
	}
	if err := deps.AccountStore.Create(ctx, acct); err != nil {
		return fmt.Errorf("seed admin: save: %w", err)
	}
	slog.Info("seed_event", "event", "admin_created", "email", email)
	return nil
}
