package activity

import (
	"context"

	domain "schoolhub/internal/domain/activity"
)

// Store persists Activity aggregates together with their participants and requests.
type Store interface {
	Get(ctx context.Context, name string) (domain.Activity, error)
	List(ctx context.Context) ([]domain.Activity, error)
	// Save inserts when Version is 0 and otherwise updates guarded by Version.
	// It returns the entity carrying its new Version.
	Save(ctx context.Context, value domain.Activity) (domain.Activity, error)
	Delete(ctx context.Context, name string) error
}
