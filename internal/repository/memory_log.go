package repository

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"thermolog/internal/models"
)

// MemoryLog is an in-memory LogStore with the same second precision as FileLog.
type MemoryLog struct {
	mu      sync.Mutex
	name    string
	entries []models.LogEntry
}

func NewMemoryLog(name string) *MemoryLog {
	return &MemoryLog{name: name}
}

var _ LogStore = (*MemoryLog)(nil)

func (l *MemoryLog) Name() string { return l.name }

func (l *MemoryLog) Append(ctx context.Context, e models.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, truncateEntry(e))
	return nil
}

func (l *MemoryLog) Rotate(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := lo.Filter(l.entries, func(e models.LogEntry, _ int) bool {
		return retained(e, now, window)
	})
	dropped := len(l.entries) - len(kept)
	l.entries = kept
	return dropped, nil
}

func (l *MemoryLog) ReadAll(ctx context.Context) ([]models.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}
