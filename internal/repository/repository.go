package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"thermolog/internal/models"
)

// LogStore is one retention-managed log (all, hour or day).
type LogStore interface {
	// Append adds one entry at the end of the log.
	Append(ctx context.Context, e models.LogEntry) error
	// Rotate drops entries older than window as of now and returns how many were dropped.
	Rotate(ctx context.Context, now time.Time, window time.Duration) (int, error)
	// ReadAll returns the entries in log order.
	ReadAll(ctx context.Context) ([]models.LogEntry, error)
	// Name is the log name (models.LogAll, LogHourly, LogDaily).
	Name() string
}

type StateRepo interface {
	Save(ctx context.Context, s models.ThermoState) error
	Load(ctx context.Context) (models.ThermoState, error)
}

type Authorization interface {
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	All       LogStore
	Hourly    LogStore
	Daily     LogStore
	StateRepo StateRepo
	Auth      Authorization
}

// Logs returns the three managed logs in rotation order.
func (r *Repository) Logs() []LogStore {
	return []LogStore{r.All, r.Hourly, r.Daily}
}

// Log returns the store with the given name, or nil.
func (r *Repository) Log(name string) LogStore {
	for _, l := range r.Logs() {
		if l != nil && l.Name() == name {
			return l
		}
	}
	return nil
}

// NewFileRepository keeps all.log, hour.log and day.log under dir and the
// recorder state in memory.
func NewFileRepository(dir string, auth Authorization) *Repository {
	return &Repository{
		All:       NewFileLog(models.LogAll, filepath.Join(dir, models.LogAll+".log")),
		Hourly:    NewFileLog(models.LogHourly, filepath.Join(dir, models.LogHourly+".log")),
		Daily:     NewFileLog(models.LogDaily, filepath.Join(dir, models.LogDaily+".log")),
		StateRepo: NewStateMemory(),
		Auth:      auth,
	}
}

// NewSQLiteRepository keeps the logs and the recorder state in db.
func NewSQLiteRepository(db *sql.DB, auth Authorization) *Repository {
	return &Repository{
		All:       NewSQLiteLog(db, models.LogAll),
		Hourly:    NewSQLiteLog(db, models.LogHourly),
		Daily:     NewSQLiteLog(db, models.LogDaily),
		StateRepo: NewStateSQLite(db),
		Auth:      auth,
	}
}

// NewMemoryRepository is fully in-memory; used by tests and dry runs.
func NewMemoryRepository(auth Authorization) *Repository {
	return &Repository{
		All:       NewMemoryLog(models.LogAll),
		Hourly:    NewMemoryLog(models.LogHourly),
		Daily:     NewMemoryLog(models.LogDaily),
		StateRepo: NewStateMemory(),
		Auth:      auth,
	}
}
