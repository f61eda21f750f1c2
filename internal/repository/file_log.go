package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"thermolog/internal/models"
)

const (
	logFileMode    = 0o644
	maxLineBytes   = 1 << 20 // 1 MB
	readBufferSize = 64 * 1024
)

// FileLog is a LogStore backed by one text file in the bracketed line format.
type FileLog struct {
	name string
	path string
}

func NewFileLog(name, path string) *FileLog {
	return &FileLog{name: name, path: path}
}

var _ LogStore = (*FileLog)(nil)

func (l *FileLog) Name() string { return l.name }

func (l *FileLog) Path() string { return l.path }

// Append adds one line, creating the file if needed. It never truncates.
func (l *FileLog) Append(ctx context.Context, e models.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	if _, err := f.WriteString(FormatLine(e) + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	return f.Close()
}

// ReadAll parses every non-blank line. A missing file reads as empty.
// Lines longer than maxLineBytes are dropped.
func (l *FileLog) ReadAll(ctx context.Context) ([]models.LogEntry, error) {
	entries, _, err := l.readEntries(ctx)
	return entries, err
}

// readEntries also reports how many overlong lines were skipped.
func (l *FileLog) readEntries(ctx context.Context) ([]models.LogEntry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	var (
		entries  []models.LogEntry
		skipped  int
		line     []byte
		overlong bool
	)
	br := bufio.NewReaderSize(f, readBufferSize)
	for {
		chunk, err := br.ReadSlice('\n')
		if !overlong {
			line = append(line, chunk...)
			if len(line) > maxLineBytes {
				overlong, line = true, line[:0]
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("read %s: %w", l.path, err)
		}

		if overlong {
			skipped++
		} else if text := strings.TrimRight(string(line), "\r\n"); text != "" {
			entries = append(entries, ParseLine(text))
		}
		line, overlong = line[:0], false

		if err != nil {
			return entries, skipped, nil
		}
	}
}

// Rotate rewrites the file with the entries still inside window, in their
// original order. Overlong lines count as dropped. The file is always
// rewritten, even when nothing is dropped.
// The new content goes to a temp file in the same directory which then
// replaces the original by rename, so a crash leaves either the old or the
// new file, never a truncated one.
func (l *FileLog) Rotate(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	entries, skipped, err := l.readEntries(ctx)
	if err != nil {
		return 0, err
	}
	kept := lo.Filter(entries, func(e models.LogEntry, _ int) bool {
		return retained(e, now, window)
	})
	if err := l.replace(kept); err != nil {
		return 0, err
	}
	return len(entries) - len(kept) + skipped, nil
}

func (l *FileLog) replace(entries []models.LogEntry) (err error) {
	dir, base := filepath.Split(l.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", l.path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		if _, err = w.WriteString(FormatLine(e) + "\n"); err != nil {
			return fmt.Errorf("write temp for %s: %w", l.path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush temp for %s: %w", l.path, err)
	}
	if err = tmp.Chmod(logFileMode); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", l.path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", l.path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", l.path, err)
	}
	if err = os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("rename temp over %s: %w", l.path, err)
	}
	return nil
}
