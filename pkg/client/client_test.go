package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	web "schoolhub/internal/adapters/http"
	"schoolhub/internal/adapters/http/perf"
	accountStore "schoolhub/internal/adapters/storage/account"
	activityStore "schoolhub/internal/adapters/storage/activity"
	clubStore "schoolhub/internal/adapters/storage/club"
	notificationStore "schoolhub/internal/adapters/storage/notification"
	"schoolhub/internal/adapters/storage/storagetest"
	"schoolhub/internal/application/orchestrators"
	"schoolhub/internal/auth"
	"schoolhub/pkg/client"
)

func newClient(t *testing.T, h http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := client.New("localhost"); err == nil {
		t.Error("New(localhost) succeeded, want error")
	}
}

// TestClient_StaleActivityDiscarded serves version 3 then a late version 2.
func TestClient_StaleActivityDiscarded(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := 3
		desc := "fresh"
		if calls.Add(1) > 1 {
			version, desc = 2, "stale"
		}
		json.NewEncoder(w).Encode(client.Activity{Name: "Chess Club", Description: desc, Version: int64(version)})
	}))

	ctx := context.Background()
	first, err := c.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	if first.Version != 3 || second.Version != 3 || second.Description != "fresh" {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestClient_EscapesPathAndQuery(t *testing.T) {
	var gotPath, gotEmail string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotEmail = r.URL.Query().Get("email")
		json.NewEncoder(w).Encode(client.Message{Message: "ok", Version: 4})
	}))

	msg, err := c.Signup(context.Background(), "Chess Club", "a+b@mergington.edu")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/activities/Chess%20Club/signup" || gotEmail != "a+b@mergington.edu" {
		t.Errorf("path = %q, email = %q", gotPath, gotEmail)
	}
	if msg.Version != 4 {
		t.Errorf("message = %+v", msg)
	}
}

func TestClient_APIError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Activity is full"}`))
	}))

	_, err := c.Signup(context.Background(), "Chess Club", "a@mergington.edu")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "Activity is full" {
		t.Fatalf("err = %v", err)
	}
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("IsStatus(400) = false")
	}
}

// TestClient_DuplicateSubmissionsShareRequest fires the same signup twice while the first is in flight.
func TestClient_DuplicateSubmissionsShareRequest(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		started <- struct{}{}
		<-release
		json.NewEncoder(w).Encode(client.Message{Message: "Signed up a@mergington.edu for Chess Club", Version: 3})
	}))

	var wg sync.WaitGroup
	results := make([]client.Message, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Signup(context.Background(), "Chess Club", "a@mergington.edu")
		}()
	}
	<-started
	// Let the second call join the in-flight one.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
	for i := range 2 {
		if errs[i] != nil || results[i].Version != 3 {
			t.Errorf("call %d = %+v, %v", i, results[i], errs[i])
		}
	}
}

func TestClient_LoginKeepsToken(t *testing.T) {
	var gotAuth string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			if r.FormValue("username") != "ada@mergington.edu" || r.FormValue("password") != "secret-pass" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(client.Token{AccessToken: "tok-1", TokenType: "bearer"})
		case "/auth/me":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(client.Me{Email: "ada@mergington.edu"})
		}
	}))

	ctx := context.Background()
	if _, err := c.Login(ctx, "ada@mergington.edu", "secret-pass"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Me(ctx); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

// TestClient_AgainstServer drives the real API over an in-memory database.
func TestClient_AgainstServer(t *testing.T) {
	db := storagetest.Open(t)
	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(db),
		ActivityStore:     activityStore.NewSQLiteStore(db),
		ClubStore:         clubStore.NewSQLiteStore(db),
		NotificationStore: notificationStore.NewSQLiteStore(db),
	}
	ctx := context.Background()
	if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{
		ActivityStore: stores.ActivityStore,
		Now:           time.Now,
	}); err != nil {
		t.Fatal(err)
	}
	c := newClient(t, web.NewMux(web.Deps{
		Stores: stores,
		Tokens: auth.NewIssuer("test-secret", time.Hour, nil),
		Perf:   perf.NewCollector(16),
	}))

	before, err := c.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	msg, err := c.Signup(ctx, "Chess Club", "ada@mergington.edu")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Version != before.Version+1 {
		t.Errorf("version = %d, want %d", msg.Version, before.Version+1)
	}
	after, err := c.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Participants) != 3 || after.Version != msg.Version {
		t.Errorf("after = %+v", after)
	}

	_, err = c.Signup(ctx, "Chess Club", "ada@mergington.edu")
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("duplicate signup err = %v", err)
	}
	if _, err := c.CreateActivity(ctx, client.ActivityInput{Name: "Robotics", MaxParticipants: 5}); !client.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("anonymous create err = %v", err)
	}

	if _, err := c.Register(ctx, client.RegisterInput{Email: "t@mergington.edu", Password: "teacher-pass", Role: "teacher"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateActivity(ctx, client.ActivityInput{Name: "Robotics", MaxParticipants: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateActivity(ctx, "Robotics", client.ActivityUpdate{MaxParticipants: client.Ptr(6)}); err != nil {
		t.Fatal(err)
	}
	stats, err := c.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Summary.TotalActivities != 10 {
		t.Errorf("activities = %d, want 10", stats.Summary.TotalActivities)
	}
}

// TestClient_ActivityRecreatedByAnotherClient drops the deleted copy once
// another staff member deletes and recreates the same name.
func TestClient_ActivityRecreatedByAnotherClient(t *testing.T) {
	db := storagetest.Open(t)
	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(db),
		ActivityStore:     activityStore.NewSQLiteStore(db),
		ClubStore:         clubStore.NewSQLiteStore(db),
		NotificationStore: notificationStore.NewSQLiteStore(db),
	}
	var tick atomic.Int64
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	handler := web.NewMux(web.Deps{
		Stores: stores,
		Tokens: auth.NewIssuer("test-secret", time.Hour, nil),
		Perf:   perf.NewCollector(16),
		Now:    func() time.Time { return start.Add(time.Duration(tick.Add(1)) * time.Millisecond) },
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	connect := func() *client.Client {
		c, err := client.New(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	ctx := context.Background()
	reader, staff := connect(), connect()
	if _, err := staff.Register(ctx, client.RegisterInput{Email: "t@mergington.edu", Password: "teacher-pass", Role: "teacher"}); err != nil {
		t.Fatal(err)
	}

	if _, err := staff.CreateActivity(ctx, client.ActivityInput{Name: "Chess Club", Description: "old", MaxParticipants: 5}); err != nil {
		t.Fatal(err)
	}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := reader.Signup(ctx, "Chess Club", email); err != nil {
			t.Fatal(err)
		}
	}
	old, err := reader.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	if old.Version != 4 || old.Description != "old" {
		t.Fatalf("old = %+v", old)
	}

	if _, err := staff.DeleteActivity(ctx, "Chess Club"); err != nil {
		t.Fatal(err)
	}
	if _, err := staff.CreateActivity(ctx, client.ActivityInput{Name: "Chess Club", Description: "new", MaxParticipants: 5}); err != nil {
		t.Fatal(err)
	}

	got, err := reader.Activity(ctx, "Chess Club")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "new" || got.Version != 1 || len(got.Participants) != 0 {
		t.Errorf("Activity() = %+v, want the recreated copy", got)
	}
	list, err := reader.Activities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a := list["Chess Club"]; a.Description != "new" || len(a.Participants) != 0 {
		t.Errorf("Activities() = %+v, want the recreated copy", a)
	}
}
