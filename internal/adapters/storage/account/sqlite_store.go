package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"schoolhub/internal/adapters/storage"
	domain "schoolhub/internal/domain/account"
)

const accountColumns = "id, email, full_name, password_hash, role, created_at, failed_logins, locked_until"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	return scanAccount(row.Scan)
}

// GetByEmail retrieves an Account by normalized email.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", email)
	return scanAccount(row.Scan)
}

// Create inserts a new Account.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrEmailTaken if the email exists
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO account ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.Email,
		entity.FullName,
		entity.PasswordHash,
		entity.Role,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.NullTime(entity.LockedUntil),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrEmailTaken
	}
	return err
}

// Save updates the mutable fields of an existing Account.
// PRE: entity exists
// POST: name, password, role and lockout state are persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE account SET full_name = ?, password_hash = ?, role = ?, failed_logins = ?, locked_until = ?
		 WHERE id = ?`,
		entity.FullName,
		entity.PasswordHash,
		entity.Role,
		entity.FailedLogins,
		storage.NullTime(entity.LockedUntil),
		entity.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.FullName,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.LockedUntil = storage.ParseNullTime(lockedUntil)
	return entity, nil
}
