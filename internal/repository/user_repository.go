package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studentplanner/planner/internal/model"
	"github.com/studentplanner/planner/internal/utils"
)

const userColumns = `id, firstname, lastname, email, password, student_id, university, bio, dark_mode, email_notifications, enabled, created_at, updated_at`

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u                   model.User
		student, uni, about sql.NullString
	)
	err := s.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.Password, &student, &uni, &about,
		&u.DarkMode, &u.EmailNotifications, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.StudentID = nullString(student)
	u.University = nullString(uni)
	u.Bio = nullString(about)
	return &u, nil
}

// Create hashes password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Email = model.NormalizeEmail(u.Email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (firstname, lastname, email, password, email_notifications) VALUES (?,?,?,?,?)",
		u.Firstname, u.Lastname, u.Email, hash, true)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", model.NormalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// EmailTaken reports whether another user (id != exceptID) owns email.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND id<>?", model.NormalizeEmail(email), exceptID).Scan(&n)
	return n > 0, err
}

// UpdateProfile stores names, email and the optional profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET firstname=?, lastname=?, email=?, student_id=?, university=?, bio=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		u.Firstname, u.Lastname, u.Email, nullable(u.StudentID), nullable(u.University), nullable(u.Bio), u.ID)
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePreferences stores the dark mode and notification switches.
func (r *UserRepo) UpdatePreferences(ctx context.Context, id uint64, darkMode, emailNotifications bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET dark_mode=?, email_notifications=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		darkMode, emailNotifications, id)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", hash, id)
	return err
}
