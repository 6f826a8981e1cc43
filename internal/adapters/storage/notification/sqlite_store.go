package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schoolhub/internal/adapters/storage"
	domain "schoolhub/internal/domain/notification"
)

const notificationColumns = "id, recipient, message, type, club_id, event_id, created_at, read_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new notification store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts a Notification.
// PRE: entity has been validated
// POST: entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notification ("+notificationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.Recipient,
		entity.Message,
		entity.Type,
		entity.ClubID,
		entity.EventID,
		storage.FormatTime(entity.CreatedAt),
		storage.NullTime(entity.ReadAt),
	)
	return err
}

// GetByID retrieves a Notification.
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notification WHERE id = ?", id)
	n, err := scanNotification(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, domain.ErrNotFound
	}
	return n, err
}

// ListByRecipient returns notifications for email, newest first.
func (s *SQLiteStore) ListByRecipient(ctx context.Context, email string, unreadOnly bool) ([]domain.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM notification WHERE recipient = ?"
	if unreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

// CountUnread returns the number of unread notifications for email.
func (s *SQLiteStore) CountUnread(ctx context.Context, email string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notification WHERE recipient = ? AND read_at IS NULL", email).Scan(&count)
	return count, err
}

// MarkRead records the first read time.
// POST: read_at set if it was NULL; an already-read row is left unchanged
func (s *SQLiteStore) MarkRead(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notification SET read_at = ? WHERE id = ? AND read_at IS NULL", storage.FormatTime(at), id)
	return err
}

// MarkAllRead marks every unread notification for email.
func (s *SQLiteStore) MarkAllRead(ctx context.Context, email string, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notification SET read_at = ? WHERE recipient = ? AND read_at IS NULL", storage.FormatTime(at), email)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanNotification(scan func(dest ...any) error) (domain.Notification, error) {
	var n domain.Notification
	var createdAt string
	var readAt sql.NullString
	if err := scan(&n.ID, &n.Recipient, &n.Message, &n.Type, &n.ClubID, &n.EventID, &createdAt, &readAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, err
		}
		return domain.Notification{}, fmt.Errorf("scan notification: %w", err)
	}
	n.CreatedAt, _ = storage.ParseTime(createdAt)
	n.ReadAt = storage.ParseNullTime(readAt)
	return n, nil
}
