package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studentplanner/planner/internal/database"
	"github.com/studentplanner/planner/internal/model"
	"github.com/studentplanner/planner/internal/repository"
)

func newSQLStore(t *testing.T) (*SQLStore, *repository.SessionRepo, uint64) {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(ctx, db, "sqlite3"); err != nil {
		t.Fatal(err)
	}
	uid, err := repository.NewUserRepo(db).Create(ctx, &model.User{Firstname: "Anna", Lastname: "Test", Email: "anna@example.com"}, "secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewSessionRepo(db)
	return NewSQLStore(repo), repo, uid
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	store, _, uid := newSQLStore(t)

	d := Data{UserID: uid, Firstname: "Anna", Email: "anna@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, "h1", d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "h1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UserID != uid || got.Firstname != "Anna" {
		t.Errorf("got %+v", got)
	}

	if err := store.Refresh(ctx, "h1", "Ania", "ania@example.com"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got, _ := store.Load(ctx, "h1"); got.Firstname != "Ania" || got.Email != "ania@example.com" {
		t.Errorf("after refresh %+v", got)
	}

	if err := store.Delete(ctx, "h1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "h1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after delete = %v, want ErrNoSession", err)
	}
	if _, err := store.Load(ctx, "unknown"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load unknown = %v, want ErrNoSession", err)
	}
}

func TestSQLStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, repo, uid := newSQLStore(t)

	if err := store.Save(ctx, "old", Data{UserID: uid, ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "live", Data{UserID: uid, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(ctx, "old"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expired session loaded: %v", err)
	}

	n, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired removed %d rows, want 1", n)
	}
	if _, err := store.Load(ctx, "live"); err != nil {
		t.Errorf("live session lost: %v", err)
	}
}
