// Package audit keeps an append-only record of quiz parse requests.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	TypeQuizParsed      = "QuizParsed"
	TypeQuizParseFailed = "QuizParseFailed"
)

type Event struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Subject   string          `json:"subject"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// ParseOutcome is the payload of QuizParsed and QuizParseFailed events.
type ParseOutcome struct {
	Filename  string `json:"filename"`
	Kind      string `json:"kind,omitempty"`
	Questions int    `json:"questions"`
	Dropped   int    `json:"dropped"`
	Error     string `json:"error,omitempty"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB, now func() time.Time) *EventRepo {
	if now == nil {
		now = time.Now
	}
	return &EventRepo{db: db, now: now}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	data := e.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, subject, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Subject, string(data), r.now().Unix())
	return err
}

// RecordParse appends a parse outcome; a non-empty out.Error makes it a failure event.
func (r *EventRepo) RecordParse(ctx context.Context, subject string, out ParseOutcome) error {
	typ := TypeQuizParsed
	if out.Error != "" {
		typ = TypeQuizParseFailed
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return r.Append(ctx, Event{Type: typ, Subject: subject, Data: b})
}

// List returns the newest events first.
func (r *EventRepo) List(ctx context.Context, limit int) ([]Event, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, typ, subject, data, created_at FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Seq, &e.Type, &e.Subject, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}
