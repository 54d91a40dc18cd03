package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"estate_e2e/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS suite_runs (
		id INTEGER PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		site_id TEXT,
		mode TEXT,
		filter TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		passed INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scenario_results (
		id INTEGER PRIMARY KEY,
		run_id INTEGER NOT NULL,
		scenario TEXT NOT NULL,
		group_name TEXT,
		status TEXT,
		duration_ms INTEGER,
		messages JSON,
		screenshot_key TEXT,
		request_count INTEGER DEFAULT 0,
		started_at DATETIME,
		FOREIGN KEY (run_id) REFERENCES suite_runs(id)
	);

	CREATE TABLE IF NOT EXISTS intercepted_requests (
		id INTEGER PRIMARY KEY,
		result_id INTEGER NOT NULL,
		seq INTEGER,
		url TEXT,
		method TEXT,
		resource_type TEXT,
		mocked BOOLEAN DEFAULT FALSE,
		FOREIGN KEY (result_id) REFERENCES scenario_results(id)
	);

	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		scope TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON scenario_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_scenario ON scenario_results(scenario, started_at);
	CREATE INDEX IF NOT EXISTS idx_requests_result ON intercepted_requests(result_id, seq);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON run_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON suite_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.SuiteRun) (int64, error) {
	if run.Token == uuid.Nil {
		run.Token = uuid.New()
	}
	result, err := s.db.Exec(`
		INSERT INTO suite_runs (token, site_id, mode, filter, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.Token.String(), run.SiteID, run.Mode, run.Filter, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.SuiteRun) error {
	_, err := s.db.Exec(`
		UPDATE suite_runs SET finished_at = ?, status = ?, passed = ?, failed = ?, skipped = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.Passed, run.Failed, run.Skipped, run.ID)
	return err
}

func (s *SQLiteStore) GetRun(id int64) (*models.SuiteRun, error) {
	row := s.db.QueryRow(`
		SELECT id, token, site_id, mode, filter, started_at, finished_at, status, passed, failed, skipped
		FROM suite_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// RecentRuns returns the newest runs first.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.SuiteRun, error) {
	rows, err := s.db.Query(`
		SELECT id, token, site_id, mode, filter, started_at, finished_at, status, passed, failed, skipped
		FROM suite_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SuiteRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.SuiteRun, error) {
	var run models.SuiteRun
	var token string
	var filter sql.NullString
	if err := row.Scan(&run.ID, &token, &run.SiteID, &run.Mode, &filter, &run.StartedAt,
		&run.FinishedAt, &run.Status, &run.Passed, &run.Failed, &run.Skipped); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("run %d: bad token %q: %w", run.ID, token, err)
	}
	run.Token = parsed
	run.Filter = filter.String
	return &run, nil
}

func (s *SQLiteStore) SaveResult(res *models.ScenarioResult) (int64, error) {
	messages, err := json.Marshal(res.Messages)
	if err != nil {
		return 0, err
	}
	result, err := s.db.Exec(`
		INSERT INTO scenario_results (run_id, scenario, group_name, status, duration_ms,
			messages, screenshot_key, request_count, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Scenario, res.Group, res.Status, res.Duration.Milliseconds(),
		string(messages), res.ScreenshotKey, res.RequestCount, res.StartedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ResultsForRun(runID int64) ([]models.ScenarioResult, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, scenario, group_name, status, duration_ms, messages,
			screenshot_key, request_count, started_at
		FROM scenario_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ScenarioResult
	for rows.Next() {
		var r models.ScenarioResult
		var durationMs int64
		var messages, screenshot sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.Scenario, &r.Group, &r.Status, &durationMs,
			&messages, &screenshot, &r.RequestCount, &r.StartedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.ScreenshotKey = screenshot.String
		if messages.Valid && messages.String != "" && messages.String != "null" {
			if err := json.Unmarshal([]byte(messages.String), &r.Messages); err != nil {
				return nil, fmt.Errorf("result %d messages: %w", r.ID, err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveRequests stores a scenario's request log in one transaction.
func (s *SQLiteStore) SaveRequests(resultID int64, reqs []models.InterceptedRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO intercepted_requests (result_id, seq, url, method, resource_type, mocked)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range reqs {
		if _, err := stmt.Exec(resultID, r.Seq, r.URL, r.Method, r.ResourceType, r.Mocked); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RequestsForResult(resultID int64) ([]models.InterceptedRequest, error) {
	rows, err := s.db.Query(`
		SELECT seq, url, method, resource_type, mocked
		FROM intercepted_requests WHERE result_id = ? ORDER BY seq`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.InterceptedRequest
	for rows.Next() {
		var r models.InterceptedRequest
		if err := rows.Scan(&r.Seq, &r.URL, &r.Method, &r.ResourceType, &r.Mocked); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, scope string) error {
	_, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, timestamp, level, message, scope)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, scope)
	return err
}

func (s *SQLiteStore) LogsForRun(runID int64) ([]models.RunLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, scope
		FROM run_logs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var l models.RunLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.Scope); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecentLogs returns the newest log lines across runs, newest first. An empty
// level returns every level.
func (s *SQLiteStore) RecentLogs(limit int, level models.LogLevel) ([]models.RunLog, error) {
	query := `SELECT id, run_id, timestamp, level, message, scope FROM run_logs`
	args := []any{}
	if level != "" {
		query += ` WHERE level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var l models.RunLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.Scope); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) QueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	var raw any
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		raw = string(data)
	}
	result, err := s.db.Exec(`INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		cmd, raw, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || strings.TrimSpace(string(cmd.Params)) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// LastRunTime returns when the newest completed run for siteID started.
func (s *SQLiteStore) LastRunTime(siteID string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(`
		SELECT started_at FROM suite_runs
		WHERE site_id = ? AND status = ?
		ORDER BY started_at DESC LIMIT 1`, siteID, models.RunStatusCompleted).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return t, err
}

// FlakyScenarios maps each scenario that both passed and failed within the
// last n runs to its failure count.
func (s *SQLiteStore) FlakyScenarios(lastRuns int) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT scenario, SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) AS failures
		FROM scenario_results
		WHERE run_id IN (SELECT id FROM suite_runs ORDER BY started_at DESC, id DESC LIMIT ?)
		GROUP BY scenario
		HAVING failures > 0 AND SUM(CASE WHEN status = 'passed' THEN 1 ELSE 0 END) > 0`, lastRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var failures int
		if err := rows.Scan(&name, &failures); err != nil {
			return nil, err
		}
		out[name] = failures
	}
	return out, rows.Err()
}
