package logger

import (
	"os"
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Encodings accepted by New.
const (
	ConsoleEncoding = "console"
	JSONEncoding    = "json"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton console logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level string) *Logger {
	return GetWithEncoding(level, ConsoleEncoding)
}

// GetWithEncoding is Get with an explicit encoder ("console" or "json").
// Output goes to stderr: stdout carries the echoed device readings.
func GetWithEncoding(level, encoding string) *Logger {
	once.Do(func() {
		globalLogger = New(level, encoding, os.Stderr)
	})
	return globalLogger
}
