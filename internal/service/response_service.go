package service

import "time"

// LogFilter selects entries of one log by time range.
type LogFilter struct {
	Name string    // "all" | "hour" | "day"
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
}
