// Package accesslog persists a log of cache operations (lookups,
// admissions, evictions, flushes, policy switches) to a SQL backend.
// The engine core never touches it; the HTTP layer writes entries after
// each completed operation.
package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Operation names recorded in the log.
const (
	OpLookup = "lookup"
	OpAdmit  = "admit"
	OpEvict  = "evict"
	OpFlush  = "flush"
	OpSwitch = "switch_policy"
)

// Entry is one logged cache operation.
type Entry struct {
	TraceID   string    `json:"trace_id"`
	Op        string    `json:"op"`
	Key       string    `json:"key,omitempty"`
	Policy    string    `json:"policy"`
	Hit       bool      `json:"hit"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Writer persists access log entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// Reader serves recent access log entries, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// NoopWriter ignores all log writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLStore persists entries to SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteStore opens (or creates) a SQLite-backed access log.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "qscached-access.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite access log: %w", err)
	}
	s := &SQLStore{db: db, dialect: "sqlite"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore opens a Postgres-backed access log.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres access log: %w", err)
	}
	s := &SQLStore{db: db, dialect: "postgres"}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s access log: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS access_logs (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	op TEXT NOT NULL,
	key TEXT,
	policy TEXT NOT NULL,
	hit BOOLEAN NOT NULL,
	detail TEXT,
	created_at TIMESTAMP NOT NULL
);`

	if s.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS access_logs (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	op TEXT NOT NULL,
	key TEXT,
	policy TEXT NOT NULL,
	hit BOOLEAN NOT NULL,
	detail TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize access log schema: %w", err)
	}
	return nil
}

// Write appends one entry to the log.
func (s *SQLStore) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO access_logs(trace_id, op, key, policy, hit, detail, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)`
	if s.dialect == "postgres" {
		query = `INSERT INTO access_logs(trace_id, op, key, policy, hit, detail, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)`
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Op,
		entry.Key,
		entry.Policy,
		entry.Hit,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write access log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT trace_id, op, key, policy, hit, detail, created_at
	FROM access_logs ORDER BY id DESC LIMIT ?`
	if s.dialect == "postgres" {
		query = `SELECT trace_id, op, key, policy, hit, detail, created_at
		FROM access_logs ORDER BY id DESC LIMIT $1`
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("read access log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TraceID, &e.Op, &e.Key, &e.Policy, &e.Hit, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access log rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
