package orchestrators

import (
	"context"
	"testing"

	"schoolhub/internal/domain/account"
)

// TestExecuteSeedActivities_Idempotent seeds the catalogue once.
func TestExecuteSeedActivities_Idempotent(t *testing.T) {
	store := newMemActivityStore()
	deps := SeedActivitiesDeps{ActivityStore: store, Now: fixedNow}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ExecuteSeedActivities(ctx, deps); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := store.List(ctx)
	if len(list) != 9 {
		t.Fatalf("activities = %d, want 9", len(list))
	}
	if list[0].Name != "Chess Club" || list[8].Name != "Debate Team" {
		t.Errorf("order = %s .. %s", list[0].Name, list[8].Name)
	}
	if list[0].MaxParticipants != 12 || len(list[0].Participants) != 2 {
		t.Errorf("chess club = %+v", list[0])
	}
}

// TestExecuteSeedAdmin_Idempotent creates one admin account.
func TestExecuteSeedAdmin_Idempotent(t *testing.T) {
	store := newMemAccountStore()
	deps := SeedAdminDeps{AccountStore: store, GenerateID: sequentialIDs("admin"), Now: fixedNow}
	ctx := context.Background()
	input := SeedAdminInput{Email: "Admin@school.edu", Password: "change-me-now"}

	for i := 0; i < 2; i++ {
		if err := ExecuteSeedAdmin(ctx, input, deps); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.accounts) != 1 {
		t.Fatalf("accounts = %d", len(store.accounts))
	}
	a := store.accounts["admin@school.edu"]
	if a.Role != account.RoleAdmin || a.ID != "admin-1" || a.CheckPassword("change-me-now") != nil {
		t.Errorf("admin = %+v", a)
	}

	if err := ExecuteSeedAdmin(ctx, SeedAdminInput{}, deps); err != nil {
		t.Errorf("empty email should be a no-op: %v", err)
	}
}
