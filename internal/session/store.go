package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studentplanner/planner/internal/repository"
)

// ErrNoSession is returned by a Store for unknown, revoked or expired
// sessions.
var ErrNoSession = errors.New("no session")

// Store keeps session data keyed by the hash of the session id.
type Store interface {
	Save(ctx context.Context, hash string, d Data) error
	Load(ctx context.Context, hash string) (Data, error)
	Refresh(ctx context.Context, hash, firstname, email string) error
	Delete(ctx context.Context, hash string) error
}

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	repo *repository.SessionRepo
}

func NewSQLStore(repo *repository.SessionRepo) *SQLStore { return &SQLStore{repo: repo} }

func (s *SQLStore) Save(ctx context.Context, hash string, d Data) error {
	return s.repo.Store(ctx, repository.SessionRecord{
		UserID:    d.UserID,
		TokenHash: hash,
		Firstname: d.Firstname,
		Email:     d.Email,
		ExpiresAt: d.ExpiresAt,
	})
}

func (s *SQLStore) Load(ctx context.Context, hash string) (Data, error) {
	rec, err := s.repo.Lookup(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Data{}, ErrNoSession
		}
		return Data{}, err
	}
	return Data{UserID: rec.UserID, Firstname: rec.Firstname, Email: rec.Email, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *SQLStore) Refresh(ctx context.Context, hash, firstname, email string) error {
	return s.repo.UpdateCache(ctx, hash, firstname, email)
}

func (s *SQLStore) Delete(ctx context.Context, hash string) error {
	return s.repo.RevokeByHash(ctx, hash)
}

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "planner:session:"}
}

func (s *RedisStore) key(hash string) string { return s.prefix + hash }

func (s *RedisStore) Save(ctx context.Context, hash string, d Data) error {
	ttl := time.Until(d.ExpiresAt)
	if ttl <= 0 {
		return ErrNoSession
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(hash), b, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, hash string) (Data, error) {
	b, err := s.rdb.Get(ctx, s.key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrNoSession
		}
		return Data{}, err
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Data{}, ErrNoSession
	}
	if time.Now().After(d.ExpiresAt) {
		return Data{}, ErrNoSession
	}
	return d, nil
}

func (s *RedisStore) Refresh(ctx context.Context, hash, firstname, email string) error {
	d, err := s.Load(ctx, hash)
	if err != nil {
		return err
	}
	d.Firstname, d.Email = firstname, email
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(hash), b, redis.KeepTTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, hash string) error {
	return s.rdb.Del(ctx, s.key(hash)).Err()
}
