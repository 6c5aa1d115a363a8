package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studentplanner/planner/internal/model"
)

const eventColumns = `id, user_id, title, description, category, event_date, start_time, end_time, all_day, created_at, updated_at`

// EventRepo persists calendar events.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func scanEvent(s rowScanner) (*model.CalendarEvent, error) {
	var (
		e          model.CalendarEvent
		desc       sql.NullString
		date       time.Time
		start, end sql.NullString
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Title, &desc, &e.Category, &date, &start, &end, &e.AllDay, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Description = nullString(desc)
	e.EventDate = date.Format(model.DateLayout)
	e.StartTime = nullString(start)
	e.EndTime = nullString(end)
	e.Normalize()
	return &e, nil
}

func (r *EventRepo) query(ctx context.Context, q string, args ...any) ([]*model.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListByOwner returns every event of the owner by date and start time.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.CalendarEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM calendar_events
               WHERE user_id = ?
               ORDER BY event_date ASC, start_time ASC, id ASC`
	return r.query(ctx, q, ownerID)
}

// ByDate returns the events of one day, all-day events first.
func (r *EventRepo) ByDate(ctx context.Context, ownerID uint64, date string) ([]*model.CalendarEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM calendar_events
               WHERE user_id = ? AND event_date = ?
               ORDER BY all_day DESC, start_time ASC, id ASC`
	return r.query(ctx, q, ownerID, date)
}

// Between returns events dated from..to inclusive (YYYY-MM-DD).
func (r *EventRepo) Between(ctx context.Context, ownerID uint64, from, to string) ([]*model.CalendarEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM calendar_events
               WHERE user_id = ? AND event_date >= ? AND event_date <= ?
               ORDER BY event_date ASC, start_time ASC, id ASC`
	return r.query(ctx, q, ownerID, from, to)
}

// ByMonth returns the events of the given calendar month.
func (r *EventRepo) ByMonth(ctx context.Context, ownerID uint64, year int, month time.Month) ([]*model.CalendarEvent, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return r.Between(ctx, ownerID, first.Format(model.DateLayout), last.Format(model.DateLayout))
}

// GetByIDAndOwner returns the event only if it belongs to ownerID.
func (r *EventRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.CalendarEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = ? AND user_id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts e and reloads it.
func (r *EventRepo) Create(ctx context.Context, e *model.CalendarEvent) error {
	const q = `INSERT INTO calendar_events (user_id, title, description, category, event_date, start_time, end_time, all_day)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	e.Normalize()
	res, err := r.db.ExecContext(ctx, q, e.UserID, e.Title, nullable(e.Description), e.Category, e.EventDate, nullable(e.StartTime), nullable(e.EndTime), e.AllDay)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByIDAndOwner(ctx, uint64(id), e.UserID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// Update writes the mutable columns of e, scoped to its owner.
func (r *EventRepo) Update(ctx context.Context, e *model.CalendarEvent) error {
	const q = `UPDATE calendar_events
               SET title = ?, description = ?, category = ?, event_date = ?, start_time = ?, end_time = ?, all_day = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND user_id = ?`
	e.Normalize()
	_, err := r.db.ExecContext(ctx, q, e.Title, nullable(e.Description), e.Category, e.EventDate, nullable(e.StartTime), nullable(e.EndTime), e.AllDay, e.ID, e.UserID)
	return err
}

// DeleteByIDAndOwner removes the event or returns ErrNotFound.
func (r *EventRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchByTitle returns the owner's events whose title contains term.
func (r *EventRepo) SearchByTitle(ctx context.Context, ownerID uint64, term string) ([]*model.CalendarEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM calendar_events
               WHERE user_id = ? AND LOWER(title) LIKE ? ESCAPE '!'
               ORDER BY event_date ASC, start_time ASC, id ASC`
	return r.query(ctx, q, ownerID, likePattern(term))
}
