package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schoolhub/internal/adapters/storage"
	domain "schoolhub/internal/domain/club"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new club store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a Club with its members.
// PRE: id is non-empty
// POST: Returns the aggregate or domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Club, error) {
	clubs, err := s.load(ctx, "WHERE id = ?", id)
	if err != nil {
		return domain.Club{}, err
	}
	if len(clubs) == 0 {
		return domain.Club{}, domain.ErrNotFound
	}
	return clubs[0], nil
}

// List retrieves every Club in creation order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Club, error) {
	return s.load(ctx, "")
}

// Save inserts a new Club (Version 0) or updates an existing one guarded by Version.
// PRE: entity has been validated
// POST: Version is incremented, or domain.ErrConflict / domain.ErrNotFound
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Club) (domain.Club, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Club{}, err
	}
	defer tx.Rollback()

	if entity.Version == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO club (id, name, description, version, created_at) VALUES (?, ?, ?, 1, ?)",
			entity.ID, entity.Name, entity.Description, storage.FormatTime(entity.CreatedAt),
		)
		if err != nil {
			return domain.Club{}, fmt.Errorf("insert club: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			"UPDATE club SET name = ?, description = ?, version = version + 1 WHERE id = ? AND version = ?",
			entity.Name, entity.Description, entity.ID, entity.Version,
		)
		if err != nil {
			return domain.Club{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Club{}, missingOr(ctx, tx, "SELECT 1 FROM club WHERE id = ?", entity.ID, domain.ErrNotFound, domain.ErrConflict)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM club_member WHERE club_id = ?", entity.ID); err != nil {
			return domain.Club{}, err
		}
	}

	for _, m := range entity.Members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO club_member (club_id, email, joined_at) VALUES (?, ?, ?)",
			entity.ID, m.Email, storage.FormatTime(m.JoinedAt),
		)
		if err != nil {
			return domain.Club{}, fmt.Errorf("insert member: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Club{}, err
	}
	entity.Version++
	return entity, nil
}

// Delete removes a club, its members, its events and their rosters.
// PRE: id is non-empty
// POST: nothing references id, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM event_participant WHERE event_id IN (SELECT id FROM club_event WHERE club_id = ?)",
		"DELETE FROM club_event WHERE club_id = ?",
		"DELETE FROM club_member WHERE club_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM club WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) load(ctx context.Context, where string, args ...any) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, version, created_at FROM club "+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, err
	}
	var clubs []domain.Club
	index := make(map[string]int)
	for rows.Next() {
		var c domain.Club
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Version, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan club: %w", err)
		}
		c.CreatedAt, _ = storage.ParseTime(createdAt)
		index[c.ID] = len(clubs)
		clubs = append(clubs, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil || len(clubs) == 0 {
		return clubs, err
	}

	memberWhere := ""
	if where != "" {
		memberWhere = "WHERE club_id = ?"
	}
	mrows, err := s.db.QueryContext(ctx,
		"SELECT club_id, email, joined_at FROM club_member "+memberWhere+" ORDER BY seq", args...)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var clubID, joinedAt string
		var m domain.Member
		if err := mrows.Scan(&clubID, &m.Email, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.JoinedAt, _ = storage.ParseTime(joinedAt)
		if i, ok := index[clubID]; ok {
			clubs[i].Members = append(clubs[i].Members, m)
		}
	}
	return clubs, mrows.Err()
}

// missingOr distinguishes a vanished row from a lost version race.
func missingOr(ctx context.Context, tx *sql.Tx, query, id string, missing, conflict error) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return missing
	}
	if err != nil {
		return err
	}
	return conflict
}
