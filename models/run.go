package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type ResultStatus string

const (
	ResultPassed  ResultStatus = "passed"
	ResultFailed  ResultStatus = "failed"
	ResultSkipped ResultStatus = "skipped"
)

// SuiteRun is one invocation of the runner over a filtered set of scenarios.
type SuiteRun struct {
	ID         int64      `json:"id" db:"id"`
	Token      uuid.UUID  `json:"token" db:"token"`
	SiteID     string     `json:"site_id" db:"site_id"`
	Mode       string     `json:"mode" db:"mode"`
	Filter     string     `json:"filter" db:"filter"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Status     RunStatus  `json:"status" db:"status"`
	Passed     int        `json:"passed" db:"passed"`
	Failed     int        `json:"failed" db:"failed"`
	Skipped    int        `json:"skipped" db:"skipped"`
}

// Record folds one scenario result into the run counters.
func (r *SuiteRun) Record(res *ScenarioResult) {
	switch res.Status {
	case ResultPassed:
		r.Passed++
	case ResultFailed:
		r.Failed++
	case ResultSkipped:
		r.Skipped++
	}
}

func (r *SuiteRun) Total() int {
	return r.Passed + r.Failed + r.Skipped
}

type ScenarioResult struct {
	ID            int64         `json:"id" db:"id"`
	RunID         int64         `json:"run_id" db:"run_id"`
	Scenario      string        `json:"scenario" db:"scenario"`
	Group         string        `json:"group" db:"group_name"`
	Status        ResultStatus  `json:"status" db:"status"`
	Duration      time.Duration `json:"duration" db:"duration_ms"`
	Messages      []string      `json:"messages" db:"messages"`
	ScreenshotKey string        `json:"screenshot_key" db:"screenshot_key"`
	RequestCount  int           `json:"request_count" db:"request_count"`
	StartedAt     time.Time     `json:"started_at" db:"started_at"`
}
