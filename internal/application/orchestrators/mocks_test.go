package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"schoolhub/internal/auth"
	"schoolhub/internal/domain/account"
	"schoolhub/internal/domain/activity"
	"schoolhub/internal/domain/club"
	"schoolhub/internal/domain/notification"
)

var fixedTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// --- activity store ---

type memActivityStore struct {
	order      []string
	activities map[string]activity.Activity
	conflicts  int // Save fails with ErrConflict this many times
	saves      int
}

func newMemActivityStore(seed ...activity.Activity) *memActivityStore {
	s := &memActivityStore{activities: make(map[string]activity.Activity)}
	for _, a := range seed {
		if _, err := s.Save(context.Background(), a); err != nil {
			panic(err)
		}
	}
	s.saves = 0
	return s
}

func cloneActivity(a activity.Activity) activity.Activity {
	a.Participants = slices.Clone(a.Participants)
	a.Requests = slices.Clone(a.Requests)
	return a
}

// Get implements ActivityStoreForOrchestrator.
// PRE: name is non-empty
// POST: returns a copy or activity.ErrNotFound
func (s *memActivityStore) Get(_ context.Context, name string) (activity.Activity, error) {
	a, ok := s.activities[name]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	return cloneActivity(a), nil
}

// List implements ActivitySeedStore.
func (s *memActivityStore) List(_ context.Context) ([]activity.Activity, error) {
	out := make([]activity.Activity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, cloneActivity(s.activities[name]))
	}
	return out, nil
}

// Save implements ActivityStoreForOrchestrator with the same version guard as the SQLite store.
// PRE: a.Version matches the stored version, or is 0 for an insert
// POST: stored version is incremented
func (s *memActivityStore) Save(_ context.Context, a activity.Activity) (activity.Activity, error) {
	s.saves++
	if s.conflicts > 0 {
		s.conflicts--
		return activity.Activity{}, activity.ErrConflict
	}
	cur, exists := s.activities[a.Name]
	switch {
	case a.Version == 0 && exists:
		return activity.Activity{}, activity.ErrAlreadyExists
	case a.Version == 0:
		s.order = append(s.order, a.Name)
	case !exists:
		return activity.Activity{}, activity.ErrNotFound
	case cur.Version != a.Version:
		return activity.Activity{}, activity.ErrConflict
	}
	a.Version++
	s.activities[a.Name] = cloneActivity(a)
	return cloneActivity(a), nil
}

// Delete implements ActivityDeleter.
func (s *memActivityStore) Delete(_ context.Context, name string) error {
	if _, ok := s.activities[name]; !ok {
		return activity.ErrNotFound
	}
	delete(s.activities, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return nil
}

// --- club store ---

type memClubStore struct {
	clubs  map[string]club.Club
	events map[string]club.Event
}

func newMemClubStore() *memClubStore {
	return &memClubStore{clubs: make(map[string]club.Club), events: make(map[string]club.Event)}
}

// Get implements ClubStoreForOrchestrator.
func (s *memClubStore) Get(_ context.Context, id string) (club.Club, error) {
	c, ok := s.clubs[id]
	if !ok {
		return club.Club{}, club.ErrNotFound
	}
	c.Members = slices.Clone(c.Members)
	return c, nil
}

// Save implements ClubStoreForOrchestrator.
func (s *memClubStore) Save(_ context.Context, c club.Club) (club.Club, error) {
	cur, exists := s.clubs[c.ID]
	if c.Version != 0 {
		if !exists {
			return club.Club{}, club.ErrNotFound
		}
		if cur.Version != c.Version {
			return club.Club{}, club.ErrConflict
		}
	}
	c.Version++
	c.Members = slices.Clone(c.Members)
	s.clubs[c.ID] = c
	return c, nil
}

// Delete implements ClubStoreForOrchestrator and cascades to events.
func (s *memClubStore) Delete(_ context.Context, id string) error {
	if _, ok := s.clubs[id]; !ok {
		return club.ErrNotFound
	}
	delete(s.clubs, id)
	for eid, e := range s.events {
		if e.ClubID == id {
			delete(s.events, eid)
		}
	}
	return nil
}

// GetEvent implements EventStoreForOrchestrator.
func (s *memClubStore) GetEvent(_ context.Context, clubID, eventID string) (club.Event, error) {
	e, ok := s.events[eventID]
	if !ok || e.ClubID != clubID {
		return club.Event{}, club.ErrEventNotFound
	}
	e.Participants = slices.Clone(e.Participants)
	return e, nil
}

// SaveEvent implements EventStoreForOrchestrator.
func (s *memClubStore) SaveEvent(_ context.Context, e club.Event) (club.Event, error) {
	if _, ok := s.clubs[e.ClubID]; !ok {
		return club.Event{}, club.ErrNotFound
	}
	cur, exists := s.events[e.ID]
	if e.Version != 0 {
		if !exists {
			return club.Event{}, club.ErrEventNotFound
		}
		if cur.Version != e.Version {
			return club.Event{}, club.ErrEventConflict
		}
	}
	e.Version++
	e.Participants = slices.Clone(e.Participants)
	s.events[e.ID] = e
	return e, nil
}

// DeleteEvent implements EventStoreForOrchestrator.
func (s *memClubStore) DeleteEvent(_ context.Context, clubID, eventID string) error {
	e, ok := s.events[eventID]
	if !ok || e.ClubID != clubID {
		return club.ErrEventNotFound
	}
	delete(s.events, eventID)
	return nil
}

// --- notification store ---

type memNotificationStore struct {
	saved    []notification.Notification
	failFrom int // Save fails once this many notifications are stored; 0 disables
}

// Save implements NotificationSaver.
func (s *memNotificationStore) Save(_ context.Context, n notification.Notification) error {
	if s.failFrom > 0 && len(s.saved) >= s.failFrom {
		return errors.New("disk full")
	}
	s.saved = append(s.saved, n)
	return nil
}

// GetByID implements NotificationStoreForOrchestrator.
func (s *memNotificationStore) GetByID(_ context.Context, id string) (notification.Notification, error) {
	for _, n := range s.saved {
		if n.ID == id {
			return n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

// MarkRead implements NotificationStoreForOrchestrator.
func (s *memNotificationStore) MarkRead(_ context.Context, id string, at time.Time) error {
	for i := range s.saved {
		if s.saved[i].ID == id {
			s.saved[i].MarkRead(at)
			return nil
		}
	}
	return notification.ErrNotFound
}

// MarkAllRead implements NotificationStoreForOrchestrator.
func (s *memNotificationStore) MarkAllRead(_ context.Context, email string, at time.Time) (int, error) {
	count := 0
	for i := range s.saved {
		if s.saved[i].Recipient == email && s.saved[i].MarkRead(at) {
			count++
		}
	}
	return count, nil
}

// --- account store ---

type memAccountStore struct {
	accounts map[string]account.Account // keyed by email
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

// GetByEmail implements AccountStoreForLogin.
func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.accounts[email]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

// Save implements AccountStoreForLogin.
func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	if _, ok := s.accounts[a.Email]; !ok {
		return account.ErrNotFound
	}
	s.accounts[a.Email] = a
	return nil
}

// Create implements AccountCreator.
func (s *memAccountStore) Create(_ context.Context, a account.Account) error {
	if _, ok := s.accounts[a.Email]; ok {
		return account.ErrEmailTaken
	}
	s.accounts[a.Email] = a
	return nil
}

// --- collaborators ---

type stubTokens struct{}

// Issue implements TokenIssuer.
func (stubTokens) Issue(id auth.Identity) (string, error) {
	return "token-for-" + id.Email, nil
}

type recordingPublisher struct {
	frames map[string][]PushedNotification
}

// PublishNotification implements NotificationPublisher.
func (p *recordingPublisher) PublishNotification(email string, n PushedNotification) int {
	if p.frames == nil {
		p.frames = make(map[string][]PushedNotification)
	}
	p.frames[email] = append(p.frames[email], n)
	return 1
}

type recordingMailer struct {
	to      []string
	subject string
	err     error
}

// SendBroadcast implements BroadcastMailer.
func (m *recordingMailer) SendBroadcast(_ context.Context, recipients []string, subject, _ string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.to = append(m.to, recipients...)
	m.subject = subject
	return len(recipients), nil
}

func chessClub(participants ...string) activity.Activity {
	a := activity.Activity{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: 2,
	}
	for _, p := range participants {
		a.Participants = append(a.Participants, activity.Participant{Email: strings.ToLower(p)})
	}
	return a
}
