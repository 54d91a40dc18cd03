package models

import (
	"encoding/json"
	"time"
)

// CommandType is a control request queued for the daemon, from the queue
// command or the dashboard.
type CommandType string

const (
	CmdRunNow   CommandType = "run_now"
	CmdRunGroup CommandType = "run_group"
	CmdPause    CommandType = "pause"
	CmdResume   CommandType = "resume"
)

// Command is a queue row. ProcessedAt stays nil until the daemon has handled
// it; a command that failed is still marked processed.
type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

// CommandParams narrows run_now and run_group to a scenario group or name
// substring. Pause and resume take none.
type CommandParams struct {
	Group string `json:"group,omitempty"`
	Grep  string `json:"grep,omitempty"`
}
