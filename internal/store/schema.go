// Package store provides SQLite-backed persistence for users and applications.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id                  TEXT PRIMARY KEY,
	email               TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL DEFAULT '',
	password_hash       TEXT NOT NULL,
	headline            TEXT NOT NULL DEFAULT '',
	education           TEXT NOT NULL DEFAULT '',
	graduation_year     TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	skills              TEXT NOT NULL DEFAULT '[]',
	linkedin            TEXT NOT NULL DEFAULT '',
	github              TEXT NOT NULL DEFAULT '',
	portfolio           TEXT NOT NULL DEFAULT '',
	email_notifications INTEGER NOT NULL DEFAULT 1,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	company             TEXT NOT NULL,
	position            TEXT NOT NULL,
	location            TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'Applied',
	job_link            TEXT NOT NULL DEFAULT '',
	source              TEXT NOT NULL DEFAULT '',
	date_applied        TEXT,
	next_follow_up_date TEXT,
	priority            TEXT NOT NULL DEFAULT 'Medium',
	tags                TEXT NOT NULL DEFAULT '[]',
	notes               TEXT NOT NULL DEFAULT '',
	prep_notes          TEXT NOT NULL DEFAULT '',
	prep_checklist      TEXT NOT NULL DEFAULT '[]',
	timeline            TEXT NOT NULL DEFAULT '[]',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id, created_at);
`

// DB wraps a sql.DB with tracker-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Transactions begin IMMEDIATE so read-modify-write cycles on one
// application are serialized by SQLite's write lock.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Timestamps are stored as fixed-width RFC 3339 text in UTC so that
// lexical order in SQL matches chronological order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
