package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"thermolog/internal/models"
	"thermolog/internal/repository"
)

type LogQueryService struct {
	repos *repository.Repository
}

func NewLogQueryService(repos *repository.Repository) *LogQueryService {
	return &LogQueryService{repos: repos}
}

var (
	ErrUnknownLog       = errors.New("unknown log: must be all, hour or day")
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeLogName trims spaces, lowercases and drops a ".log" suffix.
func normalizeLogName(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".log")
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeLogName(f.Name), nil
}

// inRange reports whether ts lies in [from, to]; zero bounds are open.
func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && ts.After(to) {
		return false
	}
	return true
}

// List returns the entries of f.Name inside [From, To] in log order.
// Entries whose timestamp could not be parsed are only returned when
// the filter is unbounded.
func (s *LogQueryService) List(ctx context.Context, f LogFilter) ([]models.LogEntry, error) {
	from, to, name, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	store := s.repos.Log(name)
	if store == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLog, f.Name)
	}
	entries, err := store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return entries, nil
	}
	return lo.Filter(entries, func(e models.LogEntry, _ int) bool {
		return !e.Timestamp.IsZero() && inRange(e.Timestamp, from, to)
	}), nil
}
