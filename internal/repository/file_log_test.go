package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermolog/internal/models"
)

func entryAt(ts time.Time, text string) models.LogEntry {
	return models.LogEntry{Timestamp: ts, Text: text}
}

func TestFileLog_AppendCreatesAndNeverTruncates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "all.log")
	l := NewFileLog(models.LogAll, path)
	ctx := context.Background()
	ts := time.Date(2025, 5, 1, 8, 0, 0, 0, time.Local)

	require.NoError(t, l.Append(ctx, entryAt(ts, "20.5")))
	require.NoError(t, l.Append(ctx, entryAt(ts.Add(time.Second), "20.6")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[01.05.2025 08:00:00] - 20.5\n[01.05.2025 08:00:01] - 20.6\n",
		string(raw))
}

func TestFileLog_AppendOpenFailure(t *testing.T) {
	t.Parallel()

	l := NewFileLog(models.LogAll, filepath.Join(t.TempDir(), "missing-dir", "all.log"))
	err := l.Append(context.Background(), entryAt(time.Now(), "x"))
	require.Error(t, err)
}

func TestFileLog_ReadAllMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	l := NewFileLog(models.LogDaily, filepath.Join(t.TempDir(), "day.log"))
	entries, err := l.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileLog_ReadAllSkipsBlankLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hour.log")
	body := "[01.05.2025 08:00:00] - 20\n\n[01.05.2025 09:00:00] - 21\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	entries, err := NewFileLog(models.LogHourly, path).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "20", entries[0].Text)
	assert.Equal(t, "21", entries[1].Text)
}

func TestFileLog_RotateKeepsOnlyEntriesInsideWindow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "all.log")
	l := NewFileLog(models.LogAll, path)
	ctx := context.Background()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
	window := 24 * time.Hour
	in := []models.LogEntry{
		entryAt(now.Add(-48*time.Hour), "old"),
		entryAt(now.Add(-window-time.Second), "just expired"),
		entryAt(now.Add(-window), "edge"),
		entryAt(now.Add(-time.Hour), "recent"),
		entryAt(now, "now"),
	}
	for _, e := range in {
		require.NoError(t, l.Append(ctx, e))
	}
	// a corrupt line is treated as arbitrarily old
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("[xx.yy.zzzz] - corrupt\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dropped, err := l.Rotate(ctx, now, window)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)

	got, err := l.ReadAll(ctx)
	require.NoError(t, err)
	texts := make([]string, 0, len(got))
	for _, e := range got {
		assert.LessOrEqual(t, now.Sub(e.Timestamp), window)
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"edge", "recent", "now"}, texts)

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "all.log", files[0].Name())
}

func TestFileLog_RotateIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hour.log")
	l := NewFileLog(models.LogHourly, path)
	ctx := context.Background()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
	window := 30 * 24 * time.Hour
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, entryAt(now.Add(-time.Duration(i)*10*24*time.Hour), "21")))
	}

	_, err := l.Rotate(ctx, now, window)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	dropped, err := l.Rotate(ctx, now, window)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 4, strings.Count(string(second), "\n"))
}

func TestFileLog_RotateMissingFileCreatesEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "day.log")
	dropped, err := NewFileLog(models.LogDaily, path).Rotate(context.Background(), time.Now(), 365*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	assert.Equal(t, os.FileMode(logFileMode), info.Mode().Perm())
}

func TestFileLog_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewFileLog(models.LogAll, filepath.Join(t.TempDir(), "all.log"))
	assert.ErrorIs(t, l.Append(ctx, entryAt(time.Now(), "x")), context.Canceled)
	_, err := l.Rotate(ctx, time.Now(), time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLog_RotateDropsOverlongLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "all.log")
	l := NewFileLog(models.LogAll, path)
	ctx := context.Background()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
	require.NoError(t, l.Append(ctx, entryAt(now.Add(-time.Hour), "20.5")))
	require.NoError(t, l.Append(ctx, entryAt(now.Add(-time.Minute), strings.Repeat("9", 2*maxLineBytes))))
	require.NoError(t, l.Append(ctx, entryAt(now.Add(-48*time.Hour), "stale")))
	require.NoError(t, l.Append(ctx, entryAt(now, "21.0")))

	entries, err := l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	dropped, err := l.Rotate(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[10.06.2025 11:00:00] - 20.5\n[10.06.2025 12:00:00] - 21.0\n", string(raw))
}

func TestFileLog_ReadAllLastLineWithoutNewline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hour.log")
	body := "[01.05.2025 08:00:00] - 20\r\n[01.05.2025 09:00:00] - 21"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	entries, err := NewFileLog(models.LogHourly, path).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "20", entries[0].Text)
	assert.Equal(t, "21", entries[1].Text)
}
