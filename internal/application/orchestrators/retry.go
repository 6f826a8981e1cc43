package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"schoolhub/internal/domain/activity"
	"schoolhub/internal/domain/club"
)

// maxSaveAttempts bounds the reload-and-retry loop on version conflicts.
const maxSaveAttempts = 3

// CapacityError reports a resize below the current roster.
// Minimum is the smallest capacity that would have been accepted.
type CapacityError struct {
	Minimum int
	Err     error
}

func (e *CapacityError) Error() string {
	return e.Err.Error()
}

func (e *CapacityError) Unwrap() error {
	return e.Err
}

// retryOnConflict runs attempt until it returns something other than conflict.
// POST: returns conflict only after maxSaveAttempts losing attempts
func retryOnConflict(conflict error, attempt func() error) error {
	var err error
	for i := 1; i <= maxSaveAttempts; i++ {
		if err = attempt(); !errors.Is(err, conflict) {
			return err
		}
		slog.Warn("concurrency_event", "event", "version_conflict", "attempt", i, "error", err)
	}
	return err
}

// ActivityStoreForOrchestrator defines the store interface needed by activity orchestrators.
type ActivityStoreForOrchestrator interface {
	Get(ctx context.Context, name string) (activity.Activity, error)
	Save(ctx context.Context, a activity.Activity) (activity.Activity, error)
}

// mutateActivity loads name, applies change and saves under the version guard.
func mutateActivity(ctx context.Context, store ActivityStoreForOrchestrator, name string, change func(*activity.Activity) error) (activity.Activity, error) {
	var saved activity.Activity
	err := retryOnConflict(activity.ErrConflict, func() error {
		a, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		if err := change(&a); err != nil {
			return err
		}
		saved, err = store.Save(ctx, a)
		return err
	})
	return saved, err
}

// ClubStoreForOrchestrator defines the store interface needed by club orchestrators.
type ClubStoreForOrchestrator interface {
	Get(ctx context.Context, id string) (club.Club, error)
	Save(ctx context.Context, c club.Club) (club.Club, error)
	Delete(ctx context.Context, id string) error
}

func mutateClub(ctx context.Context, store ClubStoreForOrchestrator, id string, change func(*club.Club) error) (club.Club, error) {
	var saved club.Club
	err := retryOnConflict(club.ErrConflict, func() error {
		c, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(&c); err != nil {
			return err
		}
		saved, err = store.Save(ctx, c)
		return err
	})
	return saved, err
}

// EventStoreForOrchestrator defines the store interface needed by event orchestrators.
type EventStoreForOrchestrator interface {
	GetEvent(ctx context.Context, clubID, eventID string) (club.Event, error)
	SaveEvent(ctx context.Context, e club.Event) (club.Event, error)
	DeleteEvent(ctx context.Context, clubID, eventID string) error
}

func mutateEvent(ctx context.Context, store EventStoreForOrchestrator, clubID, eventID string, change func(*club.Event) error) (club.Event, error) {
	var saved club.Event
	err := retryOnConflict(club.ErrEventConflict, func() error {
		e, err := store.GetEvent(ctx, clubID, eventID)
		if err != nil {
			return err
		}
		if err := change(&e); err != nil {
			return err
		}
		saved, err = store.SaveEvent(ctx, e)
		return err
	})
	return saved, err
}
