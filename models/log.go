package models

import "time"

// LogLevel grades a run log line; the dashboard filters on it.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunLog is one line written during a suite run. Scope is the scenario ID,
// or "runner" for lines about the run as a whole. RunID is nil for lines
// logged outside a run.
type RunLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Scope     string    `json:"scope" db:"scope"`
}
