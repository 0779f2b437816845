// Package store persists periods, objectives, key results, weekly progress,
// settings and the reflection index in SQLite, with optional FTS5 search.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/okrtrack/internal/models"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS periods (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL,
	is_active  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS objectives (
	id          TEXT PRIMARY KEY,
	period_id   TEXT NOT NULL REFERENCES periods(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS key_results (
	id             TEXT PRIMARY KEY,
	objective_id   TEXT NOT NULL REFERENCES objectives(id) ON DELETE CASCADE,
	title          TEXT NOT NULL,
	target_value   REAL NOT NULL,
	unit           TEXT NOT NULL DEFAULT '',
	target_mode    TEXT NOT NULL DEFAULT 'linear',
	weekly_targets TEXT,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weekly_progress (
	id              TEXT PRIMARY KEY,
	key_result_id   TEXT NOT NULL REFERENCES key_results(id) ON DELETE CASCADE,
	week_start_date TEXT NOT NULL,
	value           REAL NOT NULL,
	status          TEXT NOT NULL DEFAULT '',
	note            TEXT NOT NULL DEFAULT '',
	recorded_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reflections (
	path       TEXT PRIMARY KEY,
	period_id  TEXT NOT NULL DEFAULT '',
	week       INTEGER NOT NULL DEFAULT 0,
	title      TEXT NOT NULL DEFAULT '',
	confidence INTEGER NOT NULL DEFAULT 0,
	tags       TEXT NOT NULL DEFAULT '[]',
	body       TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_objectives_period ON objectives(period_id);
CREATE INDEX IF NOT EXISTS idx_key_results_objective ON key_results(objective_id);
CREATE INDEX IF NOT EXISTS idx_progress_key_result ON weekly_progress(key_result_id);
CREATE INDEX IF NOT EXISTS idx_reflections_period ON reflections(period_id, week);
`

// DB wraps a sql.DB with OKR persistence operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Dates are stored as YYYY-MM-DD and timestamps as RFC 3339 in UTC so that
// both sort lexically.
func formatDate(t time.Time) string { return t.Format(models.DateLayout) }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseDate(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: rows affected: %w", err)
	}
	return n, nil
}
