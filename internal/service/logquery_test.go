package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"thermolog/internal/models"
	"thermolog/internal/repository"
)

// fakeLogStore is a minimal stub that satisfies repository.LogStore.
type fakeLogStore struct {
	name    string
	entries []models.LogEntry
	err     error

	reads int
}

func (f *fakeLogStore) Name() string { return f.name }

func (f *fakeLogStore) Append(ctx context.Context, e models.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLogStore) Rotate(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	return 0, f.err
}

func (f *fakeLogStore) ReadAll(ctx context.Context) ([]models.LogEntry, error) {
	f.reads++
	return f.entries, f.err
}

func fixedZone(name string, offsetSec int) *time.Location {
	return time.FixedZone(name, offsetSec)
}

func mustTimeIn(loc *time.Location, y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, loc)
}

func queryRepos(all, hour, day repository.LogStore) *repository.Repository {
	return &repository.Repository{All: all, Hourly: hour, Daily: day}
}

// normalizeToUTC

func Test_normalizeToUTC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want func(time.Time) bool
	}{
		{
			name: "zero time remains zero",
			in:   time.Time{},
			want: func(out time.Time) bool { return out.IsZero() },
		},
		{
			name: "non-UTC converted to UTC preserving instant",
			in:   mustTimeIn(fixedZone("UTC+3", 3*3600), 2025, time.August, 1, 12, 34, 56),
			want: func(out time.Time) bool {
				exp := time.Date(2025, time.August, 1, 9, 34, 56, 0, time.UTC) // 12:34:56+03 == 09:34:56Z
				return out.Location() == time.UTC && out.Equal(exp)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeToUTC(tc.in)
			if !tc.want(got) {
				t.Fatalf("unexpected normalizeToUTC result: %v (loc=%v)", got, got.Location())
			}
		})
	}
}

// normalizeLogName

func Test_normalizeLogName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		exp  string
	}{
		{name: "empty stays empty", in: "", exp: ""},
		{name: "trim spaces", in: "  hour ", exp: "hour"},
		{name: "lowercase", in: "DAY", exp: "day"},
		{name: "file name accepted", in: "all.log", exp: "all"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeLogName(c.in)
			if got != c.exp {
				t.Fatalf("normalizeLogName(%q) = %q; want %q", c.in, got, c.exp)
			}
		})
	}
}

// normalizeAndValidateFilter

func Test_normalizeAndValidateFilter(t *testing.T) {
	t.Parallel()

	fromLocal := mustTimeIn(fixedZone("UTC+2", 2*3600), 2025, time.September, 10, 10, 0, 0)
	toUTC := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in       LogFilter
		wantFrom time.Time
		wantTo   time.Time
		wantName string
		wantErr  error
	}{
		{
			name:    "all zero/empty ok",
			in:      LogFilter{},
			wantErr: nil,
		},
		{
			name: "from after to -> error",
			in: LogFilter{
				Name: "all",
				From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			},
			wantErr: errInvalidTimeRange,
		},
		{
			name: "normalize tz and name",
			in: LogFilter{
				Name: " Hour ",
				From: fromLocal,
				To:   toUTC,
			},
			wantFrom: time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC), // 10:00 +02 -> 08:00Z
			wantTo:   toUTC,
			wantName: "hour",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotFrom, gotTo, gotName, err := normalizeAndValidateFilter(tc.in)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v; got %v", tc.wantErr, err)
			}
			if !tc.wantFrom.IsZero() && !gotFrom.Equal(tc.wantFrom) {
				t.Fatalf("from: got %v; want %v", gotFrom, tc.wantFrom)
			}
			if !tc.wantTo.IsZero() && !gotTo.Equal(tc.wantTo) {
				t.Fatalf("to: got %v; want %v", gotTo, tc.wantTo)
			}
			if tc.wantName != "" && gotName != tc.wantName {
				t.Fatalf("name: got %q; want %q", gotName, tc.wantName)
			}
		})
	}
}

// LogQueryService.List

func TestLogQueryService_List_FiltersInclusiveRange(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.October, 1, 10, 0, 0, 0, time.UTC)
	hour := &fakeLogStore{
		name: models.LogHourly,
		entries: []models.LogEntry{
			{Timestamp: base.Add(-time.Hour), Text: "19"},
			{Timestamp: base, Text: "20"},
			{Timestamp: base.Add(time.Hour), Text: "21"},
			{Timestamp: base.Add(2 * time.Hour), Text: "22"},
			{Timestamp: time.Time{}, Text: "garbage"},
		},
	}
	svc := NewLogQueryService(queryRepos(&fakeLogStore{name: models.LogAll}, hour, &fakeLogStore{name: models.LogDaily}))

	out, err := svc.List(context.Background(), LogFilter{
		Name: "hour",
		From: base.In(fixedZone("UTC+5", 5*3600)),
		To:   base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].Text != "20" || out[1].Text != "21" {
		t.Fatalf("unexpected entries: %+v", out)
	}
	if hour.reads != 1 {
		t.Fatalf("ReadAll should be called once, got %d", hour.reads)
	}
}

func TestLogQueryService_List_UnboundedReturnsEverything(t *testing.T) {
	t.Parallel()

	day := &fakeLogStore{
		name: models.LogDaily,
		entries: []models.LogEntry{
			{Timestamp: time.Time{}, Text: "unparsed"},
			{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Text: "21.5"},
		},
	}
	svc := NewLogQueryService(queryRepos(&fakeLogStore{name: models.LogAll}, &fakeLogStore{name: models.LogHourly}, day))

	out, err := svc.List(context.Background(), LogFilter{Name: "day"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
}

func TestLogQueryService_List_UnknownLog(t *testing.T) {
	t.Parallel()

	svc := NewLogQueryService(repository.NewMemoryRepository(nil))

	_, err := svc.List(context.Background(), LogFilter{Name: "week"})
	if !errors.Is(err, ErrUnknownLog) {
		t.Fatalf("expected ErrUnknownLog; got %v", err)
	}
}

func TestLogQueryService_List_ValidationError(t *testing.T) {
	t.Parallel()

	all := &fakeLogStore{name: models.LogAll}
	svc := NewLogQueryService(queryRepos(all, &fakeLogStore{name: models.LogHourly}, &fakeLogStore{name: models.LogDaily}))

	_, err := svc.List(context.Background(), LogFilter{
		Name: "all",
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange; got %v", err)
	}
	if all.reads != 0 {
		t.Fatalf("store should not be read on validation error, reads=%d", all.reads)
	}
}

func TestLogQueryService_List_StoreErrorPropagation(t *testing.T) {
	t.Parallel()

	all := &fakeLogStore{name: models.LogAll, err: errors.New("disk gone")}
	svc := NewLogQueryService(queryRepos(all, &fakeLogStore{name: models.LogHourly}, &fakeLogStore{name: models.LogDaily}))

	_, err := svc.List(context.Background(), LogFilter{Name: "all"})
	if !errors.Is(err, all.err) {
		t.Fatalf("expected store error to propagate; got %v", err)
	}
}
