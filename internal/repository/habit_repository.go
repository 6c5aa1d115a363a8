package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studentplanner/planner/internal/model"
)

const habitColumns = `id, user_id, title, category, frequency, accent_color, icon, points_per_day, streak_days, created_at, updated_at`

// HabitRepo persists habits and their completion log.  Habits it returns
// carry the week view of the week containing now().
type HabitRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewHabitRepo builds a HabitRepo.  now supplies "today" in the app
// timezone; nil means time.Now.
func NewHabitRepo(db *sql.DB, now func() time.Time) *HabitRepo {
	if now == nil {
		now = time.Now
	}
	return &HabitRepo{db: db, now: now}
}

func scanHabit(s rowScanner) (*model.Habit, error) {
	var h model.Habit
	if err := s.Scan(&h.ID, &h.UserID, &h.Title, &h.Category, &h.Frequency, &h.AccentColor, &h.Icon, &h.PointsPerDay, &h.StreakDays, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Normalize()
	return &h, nil
}

// ListByOwner returns the owner's habits, newest first, with week views.
func (r *HabitRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Habit, error) {
	const q = `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	out := []*model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	done, err := r.weekCompletions(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}
	today := r.now()
	for _, h := range out {
		h.Week = model.BuildWeek(today, done[h.ID])
	}
	return out, nil
}

// GetByIDAndOwner returns the habit with its week view, or ErrNotFound.
func (r *HabitRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Habit, error) {
	const q = `SELECT ` + habitColumns + ` FROM habits WHERE id = ? AND user_id = ?`
	h, err := scanHabit(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	done, err := r.weekCompletions(ctx, ownerID, h.ID)
	if err != nil {
		return nil, err
	}
	h.Week = model.BuildWeek(r.now(), done[h.ID])
	return h, nil
}

// weekCompletions loads the completion dates of the current week, keyed by
// habit id.  habitID 0 means every habit of the owner.
func (r *HabitRepo) weekCompletions(ctx context.Context, ownerID, habitID uint64) (map[uint64]map[string]bool, error) {
	monday, sunday := model.WeekBounds(r.now())
	q := `SELECT hc.habit_id, hc.completion_date
          FROM habit_completions hc
          JOIN habits h ON h.id = hc.habit_id
          WHERE h.user_id = ? AND hc.completion_date >= ? AND hc.completion_date <= ?`
	args := []any{ownerID, monday.Format(model.DateLayout), sunday.Format(model.DateLayout)}
	if habitID != 0 {
		q += ` AND hc.habit_id = ?`
		args = append(args, habitID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]map[string]bool)
	for rows.Next() {
		var (
			id   uint64
			date time.Time
		)
		if err := rows.Scan(&id, &date); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]bool)
		}
		out[id][date.Format(model.DateLayout)] = true
	}
	return out, rows.Err()
}

// Create inserts h with a zero streak and reloads it.
func (r *HabitRepo) Create(ctx context.Context, h *model.Habit) error {
	const q = `INSERT INTO habits (user_id, title, category, frequency, accent_color, icon, points_per_day, streak_days)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	h.Normalize()
	res, err := r.db.ExecContext(ctx, q, h.UserID, h.Title, h.Category, h.Frequency, h.AccentColor, h.Icon, h.PointsPerDay, h.StreakDays)
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByIDAndOwner(ctx, uint64(id), h.UserID)
	if err != nil {
		return err
	}
	*h = *got
	return nil
}

// Update writes the mutable columns of h, scoped to its owner.
func (r *HabitRepo) Update(ctx context.Context, h *model.Habit) error {
	const q = `UPDATE habits
               SET title = ?, category = ?, frequency = ?, accent_color = ?, icon = ?, points_per_day = ?, streak_days = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND user_id = ?`
	h.Normalize()
	_, err := r.db.ExecContext(ctx, q, h.Title, h.Category, h.Frequency, h.AccentColor, h.Icon, h.PointsPerDay, h.StreakDays, h.ID, h.UserID)
	return err
}

// DeleteByIDAndOwner removes the habit and its completions in one
// transaction.
func (r *HabitRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ownedHabit(ctx, tx, id, ownerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("delete completions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return tx.Commit()
}

// ToggleCompletion flips the completion of date (YYYY-MM-DD) and stores the
// recomputed streak, all in one transaction.  It returns the reloaded habit.
func (r *HabitRepo) ToggleCompletion(ctx context.Context, id, ownerID uint64, date string) (*model.Habit, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := ownedHabit(ctx, tx, id, ownerID); err != nil {
		return nil, err
	}

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM habit_completions WHERE habit_id = ? AND completion_date = ?`,
		id, date).Scan(&n); err != nil {
		return nil, err
	}
	if n > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ? AND completion_date = ?`, id, date)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO habit_completions (habit_id, completion_date) VALUES (?, ?)`, id, date)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle completion: %w", err)
	}

	dates, err := completionDates(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	streak := model.Streak(r.now(), dates)
	if _, err := tx.ExecContext(ctx,
		`UPDATE habits SET streak_days = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		streak, id); err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// TotalPoints sums points_per_day over every completion of the owner.
func (r *HabitRepo) TotalPoints(ctx context.Context, ownerID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(h.points_per_day), 0)
               FROM habit_completions hc
               JOIN habits h ON hc.habit_id = h.id
               WHERE h.user_id = ?`
	var total int
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&total)
	return total, err
}

// Stats summarises the owner's habits for the current day.
func (r *HabitRepo) Stats(ctx context.Context, ownerID uint64) (model.HabitStats, error) {
	habits, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return model.HabitStats{}, err
	}
	points, err := r.TotalPoints(ctx, ownerID)
	if err != nil {
		return model.HabitStats{}, err
	}
	return model.SummarizeHabits(habits, model.FormatDate(r.now()), points), nil
}

// SearchByTitle returns the owner's habits whose title contains term.
func (r *HabitRepo) SearchByTitle(ctx context.Context, ownerID uint64, term string) ([]*model.Habit, error) {
	const q = `SELECT ` + habitColumns + ` FROM habits
               WHERE user_id = ? AND LOWER(title) LIKE ? ESCAPE '!'
               ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID, likePattern(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func ownedHabit(ctx context.Context, tx *sql.Tx, id, ownerID uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM habits WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func completionDates(ctx context.Context, tx *sql.Tx, habitID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT completion_date FROM habit_completions WHERE habit_id = ? ORDER BY completion_date DESC`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d.Format(model.DateLayout))
	}
	return out, rows.Err()
}
