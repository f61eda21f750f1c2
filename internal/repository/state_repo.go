package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"thermolog/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	thermoStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO thermo_state (id, session_id, last_temp_c, last_message, last_reading_at,
			hourly_samples, daily_samples, hourly_mean_c, daily_mean_c,
			cycle_started_at, last_hourly_flush_at, readings_total, invalid_readings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id,
			last_temp_c=excluded.last_temp_c,
			last_message=excluded.last_message,
			last_reading_at=excluded.last_reading_at,
			hourly_samples=excluded.hourly_samples,
			daily_samples=excluded.daily_samples,
			hourly_mean_c=excluded.hourly_mean_c,
			daily_mean_c=excluded.daily_mean_c,
			cycle_started_at=excluded.cycle_started_at,
			last_hourly_flush_at=excluded.last_hourly_flush_at,
			readings_total=excluded.readings_total,
			invalid_readings=excluded.invalid_readings,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, session_id, last_temp_c, last_message, last_reading_at,
			hourly_samples, daily_samples, hourly_mean_c, daily_mean_c,
			cycle_started_at, last_hourly_flush_at, readings_total, invalid_readings, updated_at
		FROM thermo_state WHERE id=?
	`
)

// utcOrNow persists zero UpdatedAt as the current time, everything else as UTC.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Save upserts the thermo_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, s models.ThermoState) error {
	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		thermoStateRowID,
		s.SessionID,
		s.LastTempC,
		s.LastMessage,
		s.LastReadingAt.UTC(),
		s.HourlySamples,
		s.DailySamples,
		s.HourlyMeanC,
		s.DailyMeanC,
		s.CycleStartedAt.UTC(),
		s.LastHourlyFlushAt.UTC(),
		s.ReadingsTotal,
		s.InvalidReadings,
		utcOrNow(s.UpdatedAt),
	)
	return err
}

// Load fetches the single thermo_state row. No row yet returns a zero state (ID 0).
func (r *StateSQLite) Load(ctx context.Context) (models.ThermoState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, thermoStateRowID)

	var s models.ThermoState
	if err := row.Scan(
		&s.ID,
		&s.SessionID,
		&s.LastTempC,
		&s.LastMessage,
		&s.LastReadingAt,
		&s.HourlySamples,
		&s.DailySamples,
		&s.HourlyMeanC,
		&s.DailyMeanC,
		&s.CycleStartedAt,
		&s.LastHourlyFlushAt,
		&s.ReadingsTotal,
		&s.InvalidReadings,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThermoState{}, nil
		}
		return models.ThermoState{}, err
	}

	s.LastReadingAt = s.LastReadingAt.UTC()
	s.CycleStartedAt = s.CycleStartedAt.UTC()
	s.LastHourlyFlushAt = s.LastHourlyFlushAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

// StateMemory keeps the snapshot in process; used with the file backend.
type StateMemory struct {
	mu    sync.RWMutex
	state models.ThermoState
}

func NewStateMemory() *StateMemory {
	return &StateMemory{}
}

func (r *StateMemory) Save(ctx context.Context, s models.ThermoState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.ID = thermoStateRowID
	s.UpdatedAt = utcOrNow(s.UpdatedAt)
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	return nil
}

func (r *StateMemory) Load(ctx context.Context) (models.ThermoState, error) {
	if err := ctx.Err(); err != nil {
		return models.ThermoState{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, nil
}
