package storage

import (
	"path/filepath"
	"testing"
	"time"

	"estate_e2e/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createRun(t *testing.T, s *SQLiteStore, started time.Time) *models.SuiteRun {
	t.Helper()
	run := &models.SuiteRun{
		SiteID:    "realtor_ca",
		Mode:      "headless",
		Filter:    "group=search",
		StartedAt: started,
		Status:    models.RunStatusRunning,
	}
	id, err := s.CreateRun(run)
	require.NoError(t, err)
	run.ID = id
	return run
}

func TestRunLifecycle(t *testing.T) {
	s := newStore(t)
	run := createRun(t, s, time.Now().Add(-time.Minute))
	assert.NotEqual(t, uuid.Nil, run.Token)

	run.Record(&models.ScenarioResult{Status: models.ResultPassed})
	run.Record(&models.ScenarioResult{Status: models.ResultFailed})
	run.Record(&models.ScenarioResult{Status: models.ResultSkipped})
	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	require.NoError(t, s.UpdateRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.Token, got.Token)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, "group=search", got.Filter)
	require.NotNil(t, got.FinishedAt)

	missing, err := s.GetRun(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := newStore(t)
	base := time.Now().Add(-time.Hour)
	first := createRun(t, s, base)
	second := createRun(t, s, base.Add(time.Minute))

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	runs, err = s.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestResultsAndRequests(t *testing.T) {
	s := newStore(t)
	run := createRun(t, s, time.Now())

	res := &models.ScenarioResult{
		RunID:         run.ID,
		Scenario:      "search/by location",
		Group:         "search",
		Status:        models.ResultFailed,
		Duration:      1500 * time.Millisecond,
		Messages:      []string{"expected cards", "got 0"},
		ScreenshotKey: "e2e/2026-10-15/x/search_by_location/failure.png",
		RequestCount:  2,
		StartedAt:     time.Now(),
	}
	resultID, err := s.SaveResult(res)
	require.NoError(t, err)

	reqs := []models.InterceptedRequest{
		{Seq: 1, URL: "https://www.realtor.ca/map", Method: "GET", ResourceType: "document"},
		{Seq: 2, URL: "https://www.realtor.ca/api/v1/PropertySearch", Method: "POST", ResourceType: "fetch", Mocked: true},
	}
	require.NoError(t, s.SaveRequests(resultID, reqs))
	require.NoError(t, s.SaveRequests(resultID, nil))

	results, err := s.ResultsForRun(run.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "search/by location", results[0].Scenario)
	assert.Equal(t, "search", results[0].Group)
	assert.Equal(t, models.ResultFailed, results[0].Status)
	assert.Equal(t, 1500*time.Millisecond, results[0].Duration)
	assert.Equal(t, []string{"expected cards", "got 0"}, results[0].Messages)
	assert.Equal(t, res.ScreenshotKey, results[0].ScreenshotKey)

	got, err := s.RequestsForResult(resultID)
	require.NoError(t, err)
	assert.Equal(t, reqs, got)
}

func TestLogs(t *testing.T) {
	s := newStore(t)
	run := createRun(t, s, time.Now())

	require.NoError(t, s.Log(&run.ID, models.LogLevelInfo, "starting", "runner"))
	require.NoError(t, s.Log(&run.ID, models.LogLevelError, "boom", "search/by location"))
	require.NoError(t, s.Log(nil, models.LogLevelWarn, "orphan", "scheduler"))

	logs, err := s.LogsForRun(run.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LogLevelError, logs[1].Level)
	assert.Equal(t, "search/by location", logs[1].Scope)

	recent, err := s.RecentLogs(2, "")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "orphan", recent[0].Message)
	assert.Nil(t, recent[0].RunID)
	assert.Equal(t, "boom", recent[1].Message)

	errs, err := s.RecentLogs(10, models.LogLevelError)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Message)
}

func TestCommandQueue(t *testing.T) {
	s := newStore(t)

	_, err := s.QueueCommand(models.CmdPause, nil)
	require.NoError(t, err)
	id, err := s.QueueCommand(models.CmdRunGroup, &models.CommandParams{Group: "filters"})
	require.NoError(t, err)

	cmds, err := s.GetPendingCommands()
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, models.CmdPause, cmds[0].Command)

	params, err := ParseCommandParams(&cmds[0])
	require.NoError(t, err)
	assert.Equal(t, &models.CommandParams{}, params)

	params, err = ParseCommandParams(&cmds[1])
	require.NoError(t, err)
	assert.Equal(t, "filters", params.Group)

	require.NoError(t, s.MarkCommandProcessed(id))
	cmds, err = s.GetPendingCommands()
	require.NoError(t, err)
	assert.Len(t, cmds, 1)
}

func TestLastRunTime(t *testing.T) {
	s := newStore(t)

	last, err := s.LastRunTime("realtor_ca")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	started := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
	run := createRun(t, s, started)
	run.Status = models.RunStatusCompleted
	require.NoError(t, s.UpdateRun(run))

	last, err = s.LastRunTime("realtor_ca")
	require.NoError(t, err)
	assert.True(t, last.Equal(started), "got %s want %s", last, started)
}

func TestFlakyScenarios(t *testing.T) {
	s := newStore(t)
	now := time.Now()

	statuses := [][2]models.ResultStatus{
		{models.ResultPassed, models.ResultPassed},
		{models.ResultFailed, models.ResultPassed},
		{models.ResultPassed, models.ResultPassed},
	}
	for i, st := range statuses {
		run := createRun(t, s, now.Add(time.Duration(i)*time.Minute))
		for j, name := range []string{"listing/details", "search/by location"} {
			_, err := s.SaveResult(&models.ScenarioResult{
				RunID: run.ID, Scenario: name, Status: st[j], StartedAt: now,
			})
			require.NoError(t, err)
		}
	}

	flaky, err := s.FlakyScenarios(5)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"listing/details": 1}, flaky)
}
