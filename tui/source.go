package tui

import "estate_e2e/models"

// Source is what the dashboard reads from and queues commands into. The
// SQLite store satisfies it.
type Source interface {
	RecentRuns(limit int) ([]models.SuiteRun, error)
	ResultsForRun(runID int64) ([]models.ScenarioResult, error)
	FlakyScenarios(lastRuns int) (map[string]int, error)
	RecentLogs(limit int, level models.LogLevel) ([]models.RunLog, error)
	QueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error)
}
