package orchestrators

import (
	"context"
	"errors"
	"testing"

	"schoolhub/internal/domain/club"
)

func clubDeps(store *memClubStore) ClubDeps {
	return ClubDeps{ClubStore: store, GenerateID: sequentialIDs("club"), Now: fixedNow}
}

func eventDeps(store *memClubStore) EventDeps {
	return EventDeps{EventStore: store, GenerateID: sequentialIDs("event"), Now: fixedNow}
}

// TestClubLifecycle creates, updates, joins and deletes a club.
func TestClubLifecycle(t *testing.T) {
	store := newMemClubStore()
	ctx := context.Background()

	if _, err := ExecuteCreateClub(ctx, CreateClubInput{Name: "  "}, clubDeps(store)); !errors.Is(err, club.ErrEmptyName) {
		t.Errorf("blank name error = %v", err)
	}

	c, err := ExecuteCreateClub(ctx, CreateClubInput{Name: "Robotics", Description: "Build bots"}, clubDeps(store))
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "club-1" || c.Version != 1 {
		t.Errorf("created = %+v", c)
	}

	name := "Robotics & AI"
	c, err = ExecuteUpdateClub(ctx, UpdateClubInput{ID: c.ID, Name: &name}, clubDeps(store))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != name || c.Description != "Build bots" {
		t.Errorf("updated = %+v", c)
	}

	member := ClubMembershipInput{ClubID: c.ID, Email: "A@school.edu"}
	if _, err := ExecuteJoinClub(ctx, member, clubDeps(store)); err != nil {
		t.Fatal(err)
	}
	if _, err := ExecuteJoinClub(ctx, member, clubDeps(store)); !errors.Is(err, club.ErrAlreadyMember) {
		t.Errorf("duplicate join error = %v", err)
	}
	if _, err := ExecuteLeaveClub(ctx, member, clubDeps(store)); err != nil {
		t.Fatal(err)
	}
	if _, err := ExecuteLeaveClub(ctx, member, clubDeps(store)); !errors.Is(err, club.ErrNotMember) {
		t.Errorf("second leave error = %v", err)
	}

	if _, err := ExecuteCreateEvent(ctx, CreateEventInput{ClubID: c.ID, Name: "Demo day"}, eventDeps(store)); err != nil {
		t.Fatal(err)
	}
	if err := ExecuteDeleteClub(ctx, c.ID, clubDeps(store)); err != nil {
		t.Fatal(err)
	}
	if len(store.events) != 0 {
		t.Errorf("events after club delete = %d", len(store.events))
	}
}

// TestEventRoster covers registration limits, resize and the wrong-club lookup.
func TestEventRoster(t *testing.T) {
	store := newMemClubStore()
	ctx := context.Background()
	c, _ := ExecuteCreateClub(ctx, CreateClubInput{Name: "Chess"}, clubDeps(store))
	deps := eventDeps(store)

	if _, err := ExecuteCreateEvent(ctx, CreateEventInput{ClubID: c.ID, Name: "Match", MaxParticipants: -1}, deps); !errors.Is(err, club.ErrInvalidCapacity) {
		t.Errorf("negative capacity error = %v", err)
	}
	if _, err := ExecuteCreateEvent(ctx, CreateEventInput{ClubID: "nope", Name: "Match"}, deps); !errors.Is(err, club.ErrNotFound) {
		t.Errorf("missing club error = %v", err)
	}

	e, err := ExecuteCreateEvent(ctx, CreateEventInput{ClubID: c.ID, Name: "Match", MaxParticipants: 2}, deps)
	if err != nil {
		t.Fatal(err)
	}
	reg := func(email string) error {
		_, err := ExecuteRegisterForEvent(ctx, EventRegistrationInput{ClubID: c.ID, EventID: e.ID, Email: email}, deps)
		return err
	}
	if err := reg("a@school.edu"); err != nil {
		t.Fatal(err)
	}
	if err := reg("a@school.edu"); !errors.Is(err, club.ErrAlreadyRegistered) {
		t.Errorf("duplicate error = %v", err)
	}
	if err := reg("b@school.edu"); err != nil {
		t.Fatal(err)
	}
	if err := reg("c@school.edu"); !errors.Is(err, club.ErrEventFull) {
		t.Errorf("full error = %v", err)
	}

	one := 1
	_, err = ExecuteUpdateEvent(ctx, UpdateEventInput{ClubID: c.ID, EventID: e.ID, MaxParticipants: &one}, deps)
	var capErr *CapacityError
	if !errors.As(err, &capErr) || capErr.Minimum != 2 {
		t.Errorf("resize error = %v", err)
	}

	blank := ""
	if _, err := ExecuteUpdateEvent(ctx, UpdateEventInput{ClubID: c.ID, EventID: e.ID, Name: &blank}, deps); !errors.Is(err, club.ErrEmptyEventName) {
		t.Errorf("blank name error = %v", err)
	}

	if _, err := ExecuteUnregisterFromEvent(ctx, EventRegistrationInput{ClubID: c.ID, EventID: e.ID, Email: "a@school.edu"}, deps); err != nil {
		t.Fatal(err)
	}
	if _, err := ExecuteUnregisterFromEvent(ctx, EventRegistrationInput{ClubID: c.ID, EventID: e.ID, Email: "a@school.edu"}, deps); !errors.Is(err, club.ErrNotRegistered) {
		t.Errorf("second unregister error = %v", err)
	}

	if _, err := ExecuteRegisterForEvent(ctx, EventRegistrationInput{ClubID: "other", EventID: e.ID, Email: "z@school.edu"}, deps); !errors.Is(err, club.ErrEventNotFound) {
		t.Errorf("wrong club error = %v", err)
	}
	if err := ExecuteDeleteEvent(ctx, c.ID, e.ID, deps); err != nil {
		t.Fatal(err)
	}
	if err := ExecuteDeleteEvent(ctx, c.ID, e.ID, deps); !errors.Is(err, club.ErrEventNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}
