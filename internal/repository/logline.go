package repository

import (
	"strings"
	"time"

	"thermolog/internal/models"
)

// TimestampLayout is the bracketed timestamp of every log line: DD.MM.YYYY HH:MM:SS.
const TimestampLayout = "02.01.2006 15:04:05"

const lineSeparator = " - "

// FormatLine renders an entry as "[DD.MM.YYYY HH:MM:SS] - text" in local time.
func FormatLine(e models.LogEntry) string {
	return "[" + e.Timestamp.In(time.Local).Format(TimestampLayout) + "]" + lineSeparator + e.Text
}

// ParseLine is the inverse of FormatLine. It never fails: a line whose
// bracketed timestamp does not parse gets the zero time, which rotation
// treats as older than any retention window.
func ParseLine(line string) models.LogEntry {
	line = strings.TrimRight(line, "\r\n")

	var (
		ts   time.Time
		rest = line
	)
	if strings.HasPrefix(line, "[") {
		if end := strings.IndexByte(line, ']'); end > 0 {
			if t, err := time.ParseInLocation(TimestampLayout, line[1:end], time.Local); err == nil {
				ts = t
			}
			rest = line[end+1:]
		}
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, "-")
	return models.LogEntry{Timestamp: ts, Text: strings.TrimSpace(rest)}
}

// truncateEntry drops sub-second precision, which the line format cannot carry.
func truncateEntry(e models.LogEntry) models.LogEntry {
	e.Timestamp = e.Timestamp.Truncate(time.Second)
	return e
}

// retained reports whether e is still inside window at now.
func retained(e models.LogEntry, now time.Time, window time.Duration) bool {
	return now.Sub(e.Timestamp) <= window
}
