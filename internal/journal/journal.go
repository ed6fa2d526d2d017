// Package journal persists a log of lifecycle actions the daemon took:
// what it launched, what it killed, what it swept out. The registry
// answers "what is running"; the journal answers "what happened".
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Kind classifies a journal event.
type Kind string

const (
	KindLaunched   Kind = "launched"
	KindKilled     Kind = "killed"
	KindKillFailed Kind = "kill_failed"
	KindPruned     Kind = "pruned"
)

// Event is one journal entry.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        Kind      `json:"kind"`
	PID         int       `json:"pid,omitempty"`
	ProjectPath string    `json:"project_path,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

// Query narrows Events results. Zero values mean "no filter".
type Query struct {
	Project string
	Kinds   []Kind
	Limit   int
}

// Store is the sqlite-backed journal.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the journal database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			ts_unix_ns INTEGER NOT NULL,
			kind TEXT NOT NULL,
			pid INTEGER,
			project_path TEXT,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_unix_ns);`,
		`CREATE INDEX IF NOT EXISTS idx_events_project_ts ON events(project_path, ts_unix_ns);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_ts ON events(kind, ts_unix_ns);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("journal migrate: %w", err)
		}
	}
	return nil
}

// Append writes one event. Missing id and timestamp are filled in.
func (s *Store) Append(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Kind == "" {
		return fmt.Errorf("event missing kind")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events(event_id, ts_unix_ns, kind, pid, project_path, payload_json)
		VALUES(?,?,?,?,?,?);`,
		ev.ID,
		ev.Timestamp.UTC().UnixNano(),
		string(ev.Kind),
		nullableInt(ev.PID),
		nullable(ev.ProjectPath),
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns matching events, newest first.
func (s *Store) Events(ctx context.Context, q Query) ([]Event, error) {
	where := []string{"1=1"}
	var args []any

	if q.Project != "" {
		where = append(where, "project_path = ?")
		args = append(args, q.Project)
	}
	if len(q.Kinds) > 0 {
		place := make([]string, 0, len(q.Kinds))
		for _, k := range q.Kinds {
			place = append(place, "?")
			args = append(args, string(k))
		}
		where = append(where, "kind IN ("+strings.Join(place, ",")+")")
	}

	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload_json FROM events WHERE `+strings.Join(where, " AND ")+` ORDER BY ts_unix_ns DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
