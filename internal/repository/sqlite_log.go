package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"thermolog/internal/models"
)

// SQLiteLog is a LogStore kept as rows of log_entries, one log name per store.
type SQLiteLog struct {
	db   *sql.DB
	name string
}

func NewSQLiteLog(db *sql.DB, name string) *SQLiteLog {
	return &SQLiteLog{db: db, name: name}
}

var _ LogStore = (*SQLiteLog)(nil)

const (
	insertLogEntrySQL = `
		INSERT INTO log_entries (id, log, occurred_at, message)
		VALUES (?, ?, ?, ?)
	`

	deleteExpiredSQL = `DELETE FROM log_entries WHERE log = ? AND occurred_at < ?`

	selectLogEntriesSQL = `SELECT occurred_at, message FROM log_entries WHERE log = ? ORDER BY occurred_at ASC, rowid ASC`
)

func (r *SQLiteLog) Name() string { return r.name }

// Append inserts one row. Timestamps are stored in UTC at second precision so
// text comparison in Rotate orders them correctly.
func (r *SQLiteLog) Append(ctx context.Context, e models.LogEntry) error {
	e = truncateEntry(e)
	_, err := r.db.ExecContext(ctx, insertLogEntrySQL,
		uuid.NewString(),
		r.name,
		e.Timestamp.UTC(),
		e.Text,
	)
	return err
}

// Rotate deletes rows older than now-window. Same retention rule as FileLog:
// an entry exactly window old is kept.
func (r *SQLiteLog) Rotate(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	cutoff := now.Add(-window).UTC()
	res, err := r.db.ExecContext(ctx, deleteExpiredSQL, r.name, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReadAll returns rows in timestamp order with local-time timestamps.
func (r *SQLiteLog) ReadAll(ctx context.Context) ([]models.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectLogEntriesSQL, r.name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.LogEntry, 0, 64)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.Timestamp, &e.Text); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.In(time.Local)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
