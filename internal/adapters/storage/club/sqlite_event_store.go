package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"schoolhub/internal/adapters/storage"
	domain "schoolhub/internal/domain/club"
)

const eventColumns = "id, club_id, name, description, event_date, event_time, location, max_participants, version, created_at"

// GetEvent retrieves an event of clubID with its roster.
// PRE: clubID and eventID are non-empty
// POST: Returns the event, or domain.ErrEventNotFound when it is absent or owned by another club
func (s *SQLiteStore) GetEvent(ctx context.Context, clubID, eventID string) (domain.Event, error) {
	events, err := s.loadEvents(ctx, eventFilter{clubID: clubID, eventID: eventID})
	if err != nil {
		return domain.Event{}, err
	}
	if len(events) == 0 {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return events[0], nil
}

// ListEvents returns events in creation order.
func (s *SQLiteStore) ListEvents(ctx context.Context, clubID string) ([]domain.Event, error) {
	return s.loadEvents(ctx, eventFilter{clubID: clubID})
}

// SaveEvent inserts a new event (Version 0) or updates one guarded by Version.
// PRE: entity has been validated
// POST: Version is incremented; domain.ErrNotFound when the club is gone,
// domain.ErrEventConflict on a lost race
func (s *SQLiteStore) SaveEvent(ctx context.Context, entity domain.Event) (domain.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Event{}, err
	}
	defer tx.Rollback()

	if entity.Version == 0 {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM club WHERE id = ?", entity.ClubID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		if err != nil {
			return domain.Event{}, err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO club_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)",
			entity.ID, entity.ClubID, entity.Name, entity.Description, entity.Date, entity.Time,
			entity.Location, entity.MaxParticipants, storage.FormatTime(entity.CreatedAt),
		)
		if err != nil {
			return domain.Event{}, fmt.Errorf("insert event: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE club_event SET name = ?, description = ?, event_date = ?, event_time = ?, location = ?,
			 max_participants = ?, version = version + 1 WHERE id = ? AND club_id = ? AND version = ?`,
			entity.Name, entity.Description, entity.Date, entity.Time, entity.Location,
			entity.MaxParticipants, entity.ID, entity.ClubID, entity.Version,
		)
		if err != nil {
			return domain.Event{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Event{}, missingOr(ctx, tx, "SELECT 1 FROM club_event WHERE id = ?", entity.ID, domain.ErrEventNotFound, domain.ErrEventConflict)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_participant WHERE event_id = ?", entity.ID); err != nil {
			return domain.Event{}, err
		}
	}

	for _, p := range entity.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO event_participant (event_id, email, registered_at) VALUES (?, ?, ?)",
			entity.ID, p.Email, storage.FormatTime(p.RegisteredAt),
		)
		if err != nil {
			return domain.Event{}, fmt.Errorf("insert registration: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Event{}, err
	}
	entity.Version++
	return entity, nil
}

// DeleteEvent removes an event of clubID and its roster.
// POST: event gone, or domain.ErrEventNotFound
func (s *SQLiteStore) DeleteEvent(ctx context.Context, clubID, eventID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM club_event WHERE id = ? AND club_id = ?", eventID, clubID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEventNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM event_participant WHERE event_id = ?", eventID); err != nil {
		return err
	}
	return tx.Commit()
}

// eventFilter narrows event queries; empty fields match everything.
type eventFilter struct {
	clubID  string
	eventID string
}

// where renders the filter against the club_event table aliased as alias.
func (f eventFilter) where(alias string) (string, []any) {
	var conds []string
	var args []any
	if f.eventID != "" {
		conds = append(conds, alias+".id = ?")
		args = append(args, f.eventID)
	}
	if f.clubID != "" {
		conds = append(conds, alias+".club_id = ?")
		args = append(args, f.clubID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLiteStore) loadEvents(ctx context.Context, f eventFilter) ([]domain.Event, error) {
	where, args := f.where("e")
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM club_event e"+where+" ORDER BY e.rowid", args...)
	if err != nil {
		return nil, err
	}
	var events []domain.Event
	index := make(map[string]int)
	for rows.Next() {
		var e domain.Event
		var createdAt string
		err := rows.Scan(&e.ID, &e.ClubID, &e.Name, &e.Description, &e.Date, &e.Time,
			&e.Location, &e.MaxParticipants, &e.Version, &createdAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedAt, _ = storage.ParseTime(createdAt)
		index[e.ID] = len(events)
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil || len(events) == 0 {
		return events, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT p.event_id, p.email, p.registered_at FROM event_participant p
		 JOIN club_event e ON e.id = p.event_id`+where+` ORDER BY p.seq`, args...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var eventID, registeredAt string
		var r domain.Registration
		if err := prows.Scan(&eventID, &r.Email, &registeredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		r.RegisteredAt, _ = storage.ParseTime(registeredAt)
		if i, ok := index[eventID]; ok {
			events[i].Participants = append(events[i].Participants, r)
		}
	}
	return events, prows.Err()
}
