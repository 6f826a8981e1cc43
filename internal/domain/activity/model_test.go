package activity_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"schoolhub/internal/domain/activity"
)

var now = time.Date(2026, 9, 7, 15, 30, 0, 0, time.UTC)

func chessClub(max int, emails ...string) activity.Activity {
	a := activity.Activity{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: max,
	}
	for _, e := range emails {
		a.Participants = append(a.Participants, activity.Participant{Email: e, JoinedAt: now})
	}
	return a
}

// TestActivity_Validate tests validation of Activity.
func TestActivity_Validate(t *testing.T) {
	tests := []struct {
		name     string
		activity activity.Activity
		wantErr  error
	}{
		{"valid", chessClub(12, "michael@mergington.edu"), nil},
		{"empty name", activity.Activity{MaxParticipants: 1}, activity.ErrEmptyName},
		{"zero capacity", activity.Activity{Name: "X"}, activity.ErrInvalidCapacity},
		{"over capacity", chessClub(1, "a@x.com", "b@x.com"), activity.ErrCapacityBelowRoster},
		{"duplicate participant", chessClub(3, "a@x.com", "a@x.com"), activity.ErrAlreadySignedUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.activity.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestActivity_SignUpUntilFull walks the Chess Club example: capacity 2, third signup fails.
func TestActivity_SignUpUntilFull(t *testing.T) {
	a := chessClub(2)

	if err := a.SignUp("a@x.com", now); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if got := a.Emails(); !reflect.DeepEqual(got, []string{"a@x.com"}) {
		t.Fatalf("participants = %v", got)
	}
	if err := a.SignUp("b@x.com", now); err != nil {
		t.Fatalf("second signup: %v", err)
	}
	err := a.SignUp("c@x.com", now)
	if !errors.Is(err, activity.ErrFull) {
		t.Fatalf("third signup error = %v, want ErrFull", err)
	}
	if got := a.Emails(); !reflect.DeepEqual(got, []string{"a@x.com", "b@x.com"}) {
		t.Errorf("participants changed after failed signup: %v", got)
	}
	if a.SpotsLeft() != 0 || !a.IsFull() {
		t.Errorf("SpotsLeft() = %d, IsFull() = %v", a.SpotsLeft(), a.IsFull())
	}
}

// TestActivity_SignUpDuplicate tests that an email can only join once.
func TestActivity_SignUpDuplicate(t *testing.T) {
	a := chessClub(12, "michael@mergington.edu")
	err := a.SignUp("michael@mergington.edu", now)
	if !errors.Is(err, activity.ErrAlreadySignedUp) {
		t.Fatalf("error = %v, want ErrAlreadySignedUp", err)
	}
	if len(a.Participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(a.Participants))
	}
}

// TestActivity_UnregisterThenSignUp tests that the net effect equals one signup.
func TestActivity_UnregisterThenSignUp(t *testing.T) {
	a := chessClub(5, "a@x.com", "b@x.com")
	if err := a.Unregister("a@x.com"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if err := a.SignUp("a@x.com", now); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	got := map[string]bool{}
	for _, e := range a.Emails() {
		got[e] = true
	}
	if len(got) != 2 || !got["a@x.com"] || !got["b@x.com"] {
		t.Errorf("participant set = %v", a.Emails())
	}
}

// TestActivity_UnregisterRemovesRole tests that leaving drops the role entry.
func TestActivity_UnregisterRemovesRole(t *testing.T) {
	a := chessClub(5, "a@x.com")
	if err := a.AssignRole("a@x.com", activity.RoleCaptain); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if err := a.Unregister("a@x.com"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if len(a.Roles()) != 0 {
		t.Errorf("roles after unregister = %v", a.Roles())
	}
	if err := a.Unregister("a@x.com"); !errors.Is(err, activity.ErrNotSignedUp) {
		t.Errorf("second unregister error = %v, want ErrNotSignedUp", err)
	}
}

// TestActivity_Resize tests capacity changes.
func TestActivity_Resize(t *testing.T) {
	a := chessClub(5, "a@x.com", "b@x.com")
	if err := a.Resize(0); !errors.Is(err, activity.ErrInvalidCapacity) {
		t.Errorf("Resize(0) = %v", err)
	}
	if err := a.Resize(1); !errors.Is(err, activity.ErrCapacityBelowRoster) {
		t.Errorf("Resize(1) = %v", err)
	}
	if err := a.Resize(2); err != nil || a.MaxParticipants != 2 {
		t.Errorf("Resize(2) = %v, max = %d", err, a.MaxParticipants)
	}
}

// TestActivity_AssignRole tests role assignment rules.
func TestActivity_AssignRole(t *testing.T) {
	a := chessClub(5, "a@x.com")

	if got := a.RoleOf("a@x.com"); got != activity.RoleMember {
		t.Errorf("default role = %q, want member", got)
	}
	if err := a.AssignRole("a@x.com", "overlord"); !errors.Is(err, activity.ErrInvalidRole) {
		t.Errorf("invalid role error = %v", err)
	}
	if err := a.AssignRole("ghost@x.com", activity.RoleLeader); !errors.Is(err, activity.ErrNotSignedUp) {
		t.Errorf("non-participant error = %v", err)
	}
	if err := a.AssignRole("a@x.com", activity.RoleLeader); err != nil {
		t.Fatal(err)
	}
	if err := a.AssignRole("a@x.com", activity.RoleTreasurer); err != nil {
		t.Fatal(err)
	}
	if got := a.Roles(); !reflect.DeepEqual(got, map[string]string{"a@x.com": activity.RoleTreasurer}) {
		t.Errorf("roles = %v", got)
	}
}

// TestActivity_RequestWorkflow tests pending -> approved and pending -> rejected.
func TestActivity_RequestWorkflow(t *testing.T) {
	t.Run("approve moves email into participants once", func(t *testing.T) {
		a := chessClub(2)
		if _, err := a.RequestMembership("r1", "a@x.com", now); err != nil {
			t.Fatal(err)
		}
		if _, err := a.RequestMembership("r2", "a@x.com", now); !errors.Is(err, activity.ErrRequestPending) {
			t.Fatalf("duplicate pending error = %v", err)
		}
		r, err := a.ApproveRequest("a@x.com", "admin-1", now)
		if err != nil {
			t.Fatal(err)
		}
		if r.Status != activity.RequestApproved || r.DecidedBy != "admin-1" {
			t.Errorf("request = %+v", r)
		}
		if got := a.Emails(); !reflect.DeepEqual(got, []string{"a@x.com"}) {
			t.Errorf("participants = %v", got)
		}
		if _, err := a.ApproveRequest("a@x.com", "admin-1", now); !errors.Is(err, activity.ErrNoPendingRequest) {
			t.Errorf("second approve error = %v", err)
		}
	})

	t.Run("approve on a full activity keeps the request pending", func(t *testing.T) {
		a := chessClub(1, "b@x.com")
		a.Requests = []activity.Request{{ID: "r1", Email: "a@x.com", Status: activity.RequestPending}}
		if _, err := a.ApproveRequest("a@x.com", "admin-1", now); !errors.Is(err, activity.ErrFull) {
			t.Fatalf("error = %v, want ErrFull", err)
		}
		if !a.Requests[0].IsPending() {
			t.Error("request should still be pending")
		}
		if len(a.Participants) != 1 {
			t.Errorf("participants = %v", a.Emails())
		}
	})

	t.Run("approve after reject fails and leaves participants unchanged", func(t *testing.T) {
		a := chessClub(3)
		if _, err := a.RequestMembership("r1", "a@x.com", now); err != nil {
			t.Fatal(err)
		}
		if _, err := a.RejectRequest("a@x.com", "admin-1", now); err != nil {
			t.Fatal(err)
		}
		if _, err := a.ApproveRequest("a@x.com", "admin-1", now); !errors.Is(err, activity.ErrNoPendingRequest) {
			t.Fatalf("approve after reject error = %v", err)
		}
		if len(a.Participants) != 0 {
			t.Errorf("participants = %v", a.Emails())
		}
	})

	t.Run("rejected student may file a new request", func(t *testing.T) {
		a := chessClub(3)
		a.Requests = []activity.Request{{ID: "r1", Email: "a@x.com", Status: activity.RequestRejected}}
		r, err := a.RequestMembership("r2", "a@x.com", now)
		if err != nil {
			t.Fatal(err)
		}
		if r.ID != "r2" || len(a.PendingRequests()) != 1 {
			t.Errorf("request = %+v, pending = %v", r, a.PendingRequests())
		}
		if a.Requests[0].Status != activity.RequestRejected {
			t.Error("old request must stay rejected")
		}
	})

	t.Run("participants cannot request", func(t *testing.T) {
		a := chessClub(3, "a@x.com")
		if _, err := a.RequestMembership("r1", "a@x.com", now); !errors.Is(err, activity.ErrAlreadySignedUp) {
			t.Errorf("error = %v", err)
		}
	})
}
