package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string
	Subject   string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionStore interface {
	Create(ctx context.Context, subject, role string) (Session, error)
	Get(ctx context.Context, id string) (Session, error) // ErrSessionNotFound when unknown or expired
	Delete(ctx context.Context, id string) error
}

func newSession(now time.Time, ttl time.Duration, subject, role string) Session {
	return Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func expired(s Session, now time.Time) bool { return !now.Before(s.ExpiresAt) }

/* ---------------- memory ---------------- */

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessions(ttl time.Duration, now func() time.Time) *MemorySessions {
	if now == nil {
		now = time.Now
	}
	return &MemorySessions{sessions: map[string]Session{}, ttl: ttl, now: now}
}

func (m *MemorySessions) Create(_ context.Context, subject, role string) (Session, error) {
	s := newSession(m.now(), m.ttl, subject, role)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *MemorySessions) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if expired(s, m.now()) {
		delete(m.sessions, id)
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

/* ---------------- sql ---------------- */

type SQLSessions struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLSessions(db *sql.DB, ttl time.Duration, now func() time.Time) *SQLSessions {
	if now == nil {
		now = time.Now
	}
	return &SQLSessions{db: db, ttl: ttl, now: now}
}

func (s *SQLSessions) Create(ctx context.Context, subject, role string) (Session, error) {
	sess := newSession(s.now(), s.ttl, subject, role)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, subject, role, created_at, expires_at) VALUES ($1,$2,$3,$4,$5)`,
		sess.ID, sess.Subject, sess.Role, sess.CreatedAt.UnixNano(), sess.ExpiresAt.UnixNano())
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLSessions) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	var created, expires int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject, role, created_at, expires_at FROM sessions WHERE id=$1`, id,
	).Scan(&sess.ID, &sess.Subject, &sess.Role, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	sess.CreatedAt = time.Unix(0, created)
	sess.ExpiresAt = time.Unix(0, expires)
	if expired(sess, s.now()) {
		_ = s.Delete(ctx, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SQLSessions) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

// Purge removes every expired session and returns how many were deleted.
func (s *SQLSessions) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
