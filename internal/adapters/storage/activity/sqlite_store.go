package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schoolhub/internal/adapters/storage"
	domain "schoolhub/internal/domain/activity"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new activity store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves one Activity by name.
// PRE: name is non-empty
// POST: Returns the aggregate or domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, name string) (domain.Activity, error) {
	list, err := s.load(ctx, "WHERE name = ?", name)
	if err != nil {
		return domain.Activity{}, err
	}
	if len(list) == 0 {
		return domain.Activity{}, domain.ErrNotFound
	}
	return list[0], nil
}

// List retrieves every Activity in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Activity, error) {
	return s.load(ctx, "")
}

// Save persists the aggregate in one transaction.
// PRE: entity has been validated
// POST: Version is incremented; domain.ErrAlreadyExists on a duplicate insert,
// domain.ErrConflict when the stored Version moved, domain.ErrNotFound when the row is gone
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Activity) (domain.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback()

	if entity.Version == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO activity (name, description, schedule, max_participants, requires_approval, version, created_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?) ON CONFLICT(name) DO NOTHING`,
			entity.Name, entity.Description, entity.Schedule, entity.MaxParticipants,
			entity.RequiresApproval, storage.FormatTime(entity.CreatedAt),
		)
		if err != nil {
			return domain.Activity{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Activity{}, domain.ErrAlreadyExists
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE activity SET description = ?, schedule = ?, max_participants = ?, requires_approval = ?, version = version + 1
			 WHERE name = ? AND version = ?`,
			entity.Description, entity.Schedule, entity.MaxParticipants, entity.RequiresApproval,
			entity.Name, entity.Version,
		)
		if err != nil {
			return domain.Activity{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM activity WHERE name = ?", entity.Name).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Activity{}, domain.ErrNotFound
			}
			return domain.Activity{}, domain.ErrConflict
		}
		if err := deleteChildren(ctx, tx, entity.Name); err != nil {
			return domain.Activity{}, err
		}
	}

	for _, p := range entity.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO activity_participant (activity_name, email, role, joined_at) VALUES (?, ?, ?, ?)",
			entity.Name, p.Email, p.Role, storage.FormatTime(p.JoinedAt),
		)
		if err != nil {
			return domain.Activity{}, fmt.Errorf("insert participant: %w", err)
		}
	}
	for _, r := range entity.Requests {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO membership_request (id, activity_name, email, status, created_at, decided_at, decided_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, entity.Name, r.Email, r.Status, storage.FormatTime(r.CreatedAt),
			storage.NullTime(r.DecidedAt), r.DecidedBy,
		)
		if err != nil {
			return domain.Activity{}, fmt.Errorf("insert request: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Activity{}, err
	}
	entity.Version++
	return entity, nil
}

// Delete removes an Activity with its participants and requests.
// PRE: name is non-empty
// POST: nothing referencing name remains, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChildren(ctx, tx, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM activity WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func deleteChildren(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_participant WHERE activity_name = ?", name); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM membership_request WHERE activity_name = ?", name)
	return err
}

// load reads activities matching where, ordered by name, and attaches their children.
func (s *SQLiteStore) load(ctx context.Context, where string, args ...any) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, description, schedule, max_participants, requires_approval, version, created_at FROM activity "+
			where+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	var list []domain.Activity
	index := make(map[string]int)
	for rows.Next() {
		var a domain.Activity
		var createdAt string
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &a.RequiresApproval, &a.Version, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.CreatedAt, _ = storage.ParseTime(createdAt)
		index[a.Name] = len(list)
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	childWhere := ""
	if where != "" {
		childWhere = "WHERE activity_name = ?"
	}
	if err := s.loadParticipants(ctx, list, index, childWhere, args...); err != nil {
		return nil, err
	}
	if err := s.loadRequests(ctx, list, index, childWhere, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, list []domain.Activity, index map[string]int, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT activity_name, email, role, joined_at FROM activity_participant "+where+" ORDER BY seq", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name, joinedAt string
		var p domain.Participant
		if err := rows.Scan(&name, &p.Email, &p.Role, &joinedAt); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		p.JoinedAt, _ = storage.ParseTime(joinedAt)
		if i, ok := index[name]; ok {
			list[i].Participants = append(list[i].Participants, p)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRequests(ctx context.Context, list []domain.Activity, index map[string]int, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT activity_name, id, email, status, created_at, decided_at, decided_by FROM membership_request "+
			where+" ORDER BY rowid", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name, createdAt string
		var decidedAt sql.NullString
		var r domain.Request
		if err := rows.Scan(&name, &r.ID, &r.Email, &r.Status, &createdAt, &decidedAt, &r.DecidedBy); err != nil {
			return fmt.Errorf("scan request: %w", err)
		}
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		r.DecidedAt = storage.ParseNullTime(decidedAt)
		if i, ok := index[name]; ok {
			list[i].Requests = append(list[i].Requests, r)
		}
	}
	return rows.Err()
}
