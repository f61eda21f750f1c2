package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// the recorder is the only writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA busy_timeout = 5000;",
}

const schemaLogEntries = `
CREATE TABLE IF NOT EXISTS log_entries (
    id TEXT PRIMARY KEY,
    log TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    message TEXT NOT NULL
);
`

const schemaLogEntriesIndex = `
CREATE INDEX IF NOT EXISTS idx_log_entries_log_time ON log_entries (log, occurred_at);
`

const schemaThermoState = `
CREATE TABLE IF NOT EXISTS thermo_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    session_id TEXT NOT NULL,
    last_temp_c REAL NOT NULL,
    last_message TEXT NOT NULL,
    last_reading_at TIMESTAMP NOT NULL,
    hourly_samples INTEGER NOT NULL,
    daily_samples INTEGER NOT NULL,
    hourly_mean_c REAL NOT NULL,
    daily_mean_c REAL NOT NULL,
    cycle_started_at TIMESTAMP NOT NULL,
    last_hourly_flush_at TIMESTAMP NOT NULL,
    readings_total INTEGER NOT NULL,
    invalid_readings INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// no-op after a successful Commit
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaLogEntries,
		schemaLogEntriesIndex,
		schemaThermoState,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
