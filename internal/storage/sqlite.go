package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/rsvphub/rsvp-api/internal/config"
)

// ErrNotFound is returned when a lookup or delete target does not exist.
var ErrNotFound = errors.New("record not found")

// DuplicateError is returned when a public submission collides with an
// existing RSVP under case-insensitive name comparison.
type DuplicateError struct {
	FirstName string
	LastName  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s has already submitted an RSVP.", e.FirstName, e.LastName)
}

// timeLayout is a fixed-width UTC timestamp so that lexical order in SQLite
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps the SQLite database holding RSVP responses and admin
// credentials. A single connection is shared across all requests.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Open opens (creating if necessary) the SQLite database and ensures the
// schema exists.
func Open(cfg *config.DatabaseConfig, logger *logrus.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One shared connection: the service is low volume, and a pool over an
	// in-memory database would hand each request a different database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", cfg.Path).Info("SQLite store initialized")

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// createSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func createSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- RSVP responses
CREATE TABLE IF NOT EXISTS responses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    response TEXT NOT NULL DEFAULT 'maybe',
    guest1 TEXT,
    guest2 TEXT,
    guest3 TEXT,
    guest4 TEXT,
    note TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);
CREATE INDEX IF NOT EXISTS idx_responses_name ON responses(lower(first_name), lower(last_name));

-- Admin credentials
CREATE TABLE IF NOT EXISTS admins (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
