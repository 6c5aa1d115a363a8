package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRecord is a stored login session.  Only the SHA-256 hash of the
// session id is kept.
type SessionRecord struct {
	UserID    uint64
	TokenHash string
	Firstname string
	Email     string
	ExpiresAt time.Time
}

// SessionRepo persists sessions in the 'sessions' table.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store inserts a session row.
func (r *SessionRepo) Store(ctx context.Context, s SessionRecord) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, firstname, email, expires_at) VALUES (?,?,?,?,?)",
		s.UserID, s.TokenHash, s.Firstname, s.Email, s.ExpiresAt.UTC())
	return err
}

// Lookup returns the session if it exists, is not revoked and has not
// expired.  Anything else is ErrNotFound.
func (r *SessionRepo) Lookup(ctx context.Context, tokenHash string) (SessionRecord, error) {
	var (
		s         SessionRecord
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, token_hash, firstname, email, expires_at, revoked_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.UserID, &s.TokenHash, &s.Firstname, &s.Email, &s.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, ErrNotFound
		}
		return SessionRecord{}, err
	}
	if revokedAt.Valid || time.Now().UTC().After(s.ExpiresAt) {
		return SessionRecord{}, ErrNotFound
	}
	return s, nil
}

// UpdateCache refreshes the cached firstname and email of a session.
func (r *SessionRepo) UpdateCache(ctx context.Context, tokenHash, firstname, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET firstname=?, email=? WHERE token_hash=? AND revoked_at IS NULL",
		firstname, email, tokenHash)
	return err
}

// RevokeByHash marks a session as revoked.
func (r *SessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=CURRENT_TIMESTAMP WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// DeleteExpired removes sessions that expired before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
