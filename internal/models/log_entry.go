package models

import "time"

// LogEntry is a single line of all.log, hour.log or day.log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// Log names, also used as file stems and as the `log` column in SQLite.
const (
	LogAll    = "all"
	LogHourly = "hour"
	LogDaily  = "day"
)
