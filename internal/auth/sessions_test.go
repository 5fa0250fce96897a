package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mind-engage/quizparse/internal/db"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func exerciseStore(t *testing.T, store SessionStore, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Create(ctx, "alice", RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == "" || !s.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected session %+v", s)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subject != "alice" || got.Role != RoleUser {
		t.Fatalf("got %+v", got)
	}

	if _, err := store.Get(ctx, "unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown id: expected ErrSessionNotFound, got %v", err)
	}

	clock.Advance(time.Hour)
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired: expected ErrSessionNotFound, got %v", err)
	}

	s2, err := store.Create(ctx, "bob", RoleAdmin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, s2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, s2.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted: expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessions(t *testing.T) {
	clock := newClock()
	exerciseStore(t, NewMemorySessions(time.Hour, clock.Now), clock)
}

func TestSQLSessions(t *testing.T) {
	clock := newClock()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	defer dbh.Close()
	exerciseStore(t, NewSQLSessions(dbh, time.Hour, clock.Now), clock)
}

func TestSQLSessions_Purge(t *testing.T) {
	clock := newClock()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "purge.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	defer dbh.Close()
	store := NewSQLSessions(dbh, time.Minute, clock.Now)
	ctx := context.Background()
	for _, u := range []string{"a", "b"} {
		if _, err := store.Create(ctx, u, RoleUser); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(2 * time.Minute)
	fresh, err := store.Create(ctx, "c", RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	n, err := store.Purge(ctx)
	if err != nil || n != 2 {
		t.Fatalf("purge: n=%d err=%v", n, err)
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session purged: %v", err)
	}
}
