package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrmailer/mrmailer/internal/config"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sent_emails (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    to_email    TEXT NOT NULL,
    subject     TEXT NOT NULL,
    body        TEXT NOT NULL,
    intent      TEXT NOT NULL,
    role        TEXT NOT NULL DEFAULT '',
    job_desc    TEXT NOT NULL DEFAULT '',
    extra       TEXT NOT NULL DEFAULT '',
    message_id  TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    deleted     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sent_emails_to_email ON sent_emails(to_email);
CREATE INDEX IF NOT EXISTS idx_sent_emails_created_at ON sent_emails(created_at);
`

// SQLiteTimeLayout is the text layout of sent_emails.created_at
const SQLiteTimeLayout = "2006-01-02T15:04:05.000Z"

// SQLite is a lazily opened single-writer SQLite database
type SQLite struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a handle that opens the file on first use
func NewSQLite(cfg config.SQLiteConfig) *SQLite {
	return &SQLite{path: cfg.Path}
}

func (s *SQLite) open(ctx context.Context) (*sql.DB, error) {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running schema migration: %w", err)
	}
	return db, nil
}

// Conn returns the database, opening it first if needed. A failed attempt
// leaves the handle unopened so the next call tries again.
func (s *SQLite) Conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// HealthCheck verifies the database is reachable
func (s *SQLite) HealthCheck(ctx context.Context) error {
	db, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the database
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
