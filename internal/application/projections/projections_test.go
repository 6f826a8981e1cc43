package projections

import (
	"context"
	"reflect"
	"testing"
	"time"

	domainActivity "schoolhub/internal/domain/activity"
	domainClub "schoolhub/internal/domain/club"
	domainNotification "schoolhub/internal/domain/notification"
	"schoolhub/internal/domain/occupancy"
)

var fixedTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type mockActivityStore struct {
	activities []domainActivity.Activity
}

// Get returns a seeded activity by name.
// PRE: name is non-empty
// POST: Returns the activity or ErrNotFound
func (m *mockActivityStore) Get(_ context.Context, name string) (domainActivity.Activity, error) {
	for _, a := range m.activities {
		if a.Name == name {
			return a, nil
		}
	}
	return domainActivity.Activity{}, domainActivity.ErrNotFound
}

// List returns all seeded activities.
func (m *mockActivityStore) List(_ context.Context) ([]domainActivity.Activity, error) {
	return m.activities, nil
}

func withParticipants(name string, max, count int) domainActivity.Activity {
	a := domainActivity.Activity{Name: name, Description: name + " description", Schedule: "Fridays", MaxParticipants: max, Version: 1}
	for i := 0; i < count; i++ {
		a.Participants = append(a.Participants, domainActivity.Participant{Email: string(rune('a'+i)) + "@school.edu"})
	}
	return a
}

func schoolActivities() *mockActivityStore {
	return &mockActivityStore{activities: []domainActivity.Activity{
		withParticipants("Chess Club", 12, 2),
		withParticipants("Math Club", 10, 9),
		withParticipants("Art Club", 4, 2),
	}}
}

// TestQueryGetStatistics tests occupancy rates and levels.
func TestQueryGetStatistics(t *testing.T) {
	res, err := QueryGetStatistics(context.Background(), GetStatisticsDeps{ActivityStore: schoolActivities()})
	if err != nil {
		t.Fatal(err)
	}
	want := StatisticsSummary{TotalActivities: 3, TotalParticipants: 13, TotalCapacity: 26, OverallOccupancyRate: 50}
	if res.Summary != want {
		t.Errorf("summary = %+v, want %+v", res.Summary, want)
	}
	chess := res.Activities[0]
	if chess.OccupancyRate != 16.67 || chess.OccupancyLevel != occupancy.LevelLow || chess.AvailableSpots != 10 {
		t.Errorf("chess = %+v", chess)
	}
	if res.Activities[1].OccupancyLevel != occupancy.LevelHigh || res.Activities[2].OccupancyLevel != occupancy.LevelMedium {
		t.Errorf("levels = %s, %s", res.Activities[1].OccupancyLevel, res.Activities[2].OccupancyLevel)
	}
}

// TestQueryGetStatistics_Empty yields zero rates.
func TestQueryGetStatistics_Empty(t *testing.T) {
	res, err := QueryGetStatistics(context.Background(), GetStatisticsDeps{ActivityStore: &mockActivityStore{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.OverallOccupancyRate != 0 || len(res.Activities) != 0 {
		t.Errorf("result = %+v", res)
	}

	admin, err := QueryGetAdminReports(context.Background(), GetReportsDeps{ActivityStore: &mockActivityStore{}})
	if err != nil {
		t.Fatal(err)
	}
	if admin.Summary.AverageParticipantsPerActivity != 0 {
		t.Errorf("average = %v", admin.Summary.AverageParticipantsPerActivity)
	}
}

// TestQueryGetAdminStatistics tests the utilization totals.
func TestQueryGetAdminStatistics(t *testing.T) {
	res, err := QueryGetAdminStatistics(context.Background(), GetStatisticsDeps{ActivityStore: schoolActivities()})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalCapacity != 26 || res.OverallUtilization != 50 || len(res.ActivityDetails) != 3 {
		t.Errorf("result = %+v", res)
	}
	if d := res.ActivityDetails[1]; d.Name != "Math Club" || d.Utilization != 90 || d.Capacity != 10 {
		t.Errorf("math club = %+v", d)
	}
}

// TestQueryGetAdminReports sorts by utilization descending.
func TestQueryGetAdminReports(t *testing.T) {
	res, err := QueryGetAdminReports(context.Background(), GetReportsDeps{ActivityStore: schoolActivities()})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, a := range res.Activities {
		names = append(names, a.Name)
	}
	if !reflect.DeepEqual(names, []string{"Math Club", "Art Club", "Chess Club"}) {
		t.Errorf("order = %v", names)
	}
	if res.Summary.AverageParticipantsPerActivity != 4.33 || res.Summary.TotalParticipants != 13 {
		t.Errorf("summary = %+v", res.Summary)
	}

	public, err := QueryGetReports(context.Background(), GetReportsDeps{ActivityStore: schoolActivities()})
	if err != nil {
		t.Fatal(err)
	}
	if public[0].Name != "Chess Club" || public[0].ParticipantCount != 2 || len(public[0].Participants) != 2 {
		t.Errorf("public report = %+v", public[0])
	}
}

// TestQueryGetRequests lists newest first and filters by status.
func TestQueryGetRequests(t *testing.T) {
	a := withParticipants("Chess Club", 12, 0)
	a.Requests = []domainActivity.Request{
		{ID: "r1", Email: "a@school.edu", Status: domainActivity.RequestRejected, CreatedAt: fixedTime},
		{ID: "r2", Email: "b@school.edu", Status: domainActivity.RequestPending, CreatedAt: fixedTime.Add(time.Minute)},
		{ID: "r3", Email: "a@school.edu", Status: domainActivity.RequestPending, CreatedAt: fixedTime.Add(time.Minute)},
	}
	deps := GetActivitiesDeps{ActivityStore: &mockActivityStore{activities: []domainActivity.Activity{a}}}

	all, err := QueryGetRequests(context.Background(), GetRequestsQuery{ActivityName: "Chess Club"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	if !reflect.DeepEqual(ids, []string{"r3", "r2", "r1"}) {
		t.Errorf("order = %v", ids)
	}

	pending, err := QueryGetRequests(context.Background(), GetRequestsQuery{ActivityName: "Chess Club", Status: "pending"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %+v", pending)
	}
}

// TestQueryGetActivities keys the map by name and defaults roles.
func TestQueryGetActivities(t *testing.T) {
	store := schoolActivities()
	store.activities[0].Participants[0].Role = domainActivity.RoleCaptain
	got, err := QueryGetActivities(context.Background(), GetActivitiesDeps{ActivityStore: store})
	if err != nil {
		t.Fatal(err)
	}
	chess, ok := got["Chess Club"]
	if !ok || len(got) != 3 {
		t.Fatalf("activities = %v", got)
	}
	if chess.Roles["a@school.edu"] != domainActivity.RoleCaptain || len(chess.Roles) != 1 {
		t.Errorf("roles = %v", chess.Roles)
	}
}

type mockClubStore struct {
	clubs  []domainClub.Club
	events []domainClub.Event
}

// Get returns a seeded club.
func (m *mockClubStore) Get(_ context.Context, id string) (domainClub.Club, error) {
	for _, c := range m.clubs {
		if c.ID == id {
			return c, nil
		}
	}
	return domainClub.Club{}, domainClub.ErrNotFound
}

// List returns every seeded club.
func (m *mockClubStore) List(_ context.Context) ([]domainClub.Club, error) {
	return m.clubs, nil
}

// GetEvent returns a seeded event under clubID.
func (m *mockClubStore) GetEvent(_ context.Context, clubID, eventID string) (domainClub.Event, error) {
	for _, e := range m.events {
		if e.ID == eventID && e.ClubID == clubID {
			return e, nil
		}
	}
	return domainClub.Event{}, domainClub.ErrEventNotFound
}

// ListEvents returns seeded events of clubID, or all when empty.
func (m *mockClubStore) ListEvents(_ context.Context, clubID string) ([]domainClub.Event, error) {
	var out []domainClub.Event
	for _, e := range m.events {
		if clubID == "" || e.ClubID == clubID {
			out = append(out, e)
		}
	}
	return out, nil
}

func seededClubs() *mockClubStore {
	return &mockClubStore{
		clubs: []domainClub.Club{
			{ID: "c1", Name: "Robotics", Members: []domainClub.Member{{Email: "a@school.edu"}}, Version: 2},
			{ID: "c2", Name: "Drama"},
		},
		events: []domainClub.Event{
			{ID: "e1", ClubID: "c1", Name: "Demo day", MaxParticipants: 3, Participants: []domainClub.Registration{{Email: "a@school.edu"}}},
			{ID: "e2", ClubID: "c2", Name: "Opening night"},
		},
	}
}

// TestQueryGetClubs nests events under their club.
func TestQueryGetClubs(t *testing.T) {
	got, err := QueryGetClubs(context.Background(), GetClubsDeps{ClubStore: seededClubs()})
	if err != nil {
		t.Fatal(err)
	}
	robotics := got["c1"]
	if len(robotics.Events) != 1 || robotics.Events[0].Title != "Demo day" || robotics.Events[0].SpotsLeft != 2 {
		t.Errorf("robotics = %+v", robotics)
	}
	if got["c2"].Events[0].SpotsLeft != -1 {
		t.Errorf("unlimited spots = %d", got["c2"].Events[0].SpotsLeft)
	}
	if _, err := QueryGetEvents(context.Background(), "missing", GetClubsDeps{ClubStore: seededClubs()}); err == nil {
		t.Error("expected error for unknown club")
	}
	if _, err := QueryGetEvent(context.Background(), "c2", "e1", GetClubsDeps{ClubStore: seededClubs()}); err != domainClub.ErrEventNotFound {
		t.Errorf("wrong club error = %v", err)
	}
}

type mockAccountCounter int

// Count returns the seeded total.
func (m mockAccountCounter) Count(context.Context) (int, error) { return int(m), nil }

// TestQueryGetDashboard totals the stores and includes timings.
func TestQueryGetDashboard(t *testing.T) {
	activities := schoolActivities()
	activities.activities[0].Requests = []domainActivity.Request{{ID: "r1", Email: "z@school.edu", Status: domainActivity.RequestPending}}
	timings := stubPerf{Requests: 1, P50Ms: 4, SlowestPaths: []PathTiming{{Path: "GET /activities", Count: 1, AvgMs: 4, MaxMs: 4}}}

	res, err := QueryGetDashboard(context.Background(), GetDashboardDeps{
		ActivityStore: activities,
		ClubStore:     seededClubs(),
		AccountStore:  mockAccountCounter(7),
		Perf:          timings,
		Now:           func() time.Time { return fixedTime.Add(time.Minute) },
	})
	if err != nil {
		t.Fatal(err)
	}
	want := DashboardCounts{Activities: 3, Clubs: 2, Events: 2, Accounts: 7, PendingRequests: 1, Participants: 13}
	if res.Counts != want {
		t.Errorf("counts = %+v, want %+v", res.Counts, want)
	}
	if res.Busiest[0].Name != "Math Club" {
		t.Errorf("busiest = %+v", res.Busiest)
	}
	if res.Performance.Requests != 1 {
		t.Errorf("performance = %+v", res.Performance)
	}
}

type stubPerf TimingSummary

// TimingSummary implements PerfSource.
func (s stubPerf) TimingSummary(time.Time, int) TimingSummary {
	return TimingSummary(s)
}

type mockNotificationStore struct {
	list []domainNotification.Notification
}

// ListByRecipient returns seeded notifications for email.
func (m *mockNotificationStore) ListByRecipient(_ context.Context, email string, unreadOnly bool) ([]domainNotification.Notification, error) {
	var out []domainNotification.Notification
	for _, n := range m.list {
		if n.Recipient == email && (!unreadOnly || !n.IsRead()) {
			out = append(out, n)
		}
	}
	return out, nil
}

// CountUnread counts seeded unread notifications for email.
func (m *mockNotificationStore) CountUnread(ctx context.Context, email string) (int, error) {
	list, _ := m.ListByRecipient(ctx, email, true)
	return len(list), nil
}

// TestQueryGetNotifications renders read state.
func TestQueryGetNotifications(t *testing.T) {
	deps := GetNotificationsDeps{NotificationStore: &mockNotificationStore{list: []domainNotification.Notification{
		{ID: "n1", Recipient: "a@school.edu", Message: "hi", Type: domainNotification.TypeEvent, CreatedAt: fixedTime, ReadAt: fixedTime},
		{ID: "n2", Recipient: "a@school.edu", Message: "yo", Type: domainNotification.TypeSystem, CreatedAt: fixedTime},
	}}}
	ctx := context.Background()

	all, err := QueryGetNotifications(ctx, GetNotificationsQuery{Email: "a@school.edu"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || !all[0].Read || all[0].ReadAt != "2026-10-01T09:00:00Z" || all[1].ReadAt != "" {
		t.Errorf("all = %+v", all)
	}
	unread, _ := QueryGetNotifications(ctx, GetNotificationsQuery{Email: "a@school.edu", UnreadOnly: true}, deps)
	count, _ := QueryGetUnreadCount(ctx, "a@school.edu", deps)
	if len(unread) != 1 || count != 1 {
		t.Errorf("unread = %d, count = %d", len(unread), count)
	}
}
