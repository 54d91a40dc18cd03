package storage

import (
	"context"
	"fmt"
	"time"

	"estate_e2e/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore mirrors run history into a shared database so results from
// several machines land in one place. Rows are keyed by run token.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS e2e_runs (
			token UUID PRIMARY KEY,
			site_id TEXT NOT NULL,
			host TEXT,
			mode TEXT,
			filter TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			passed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS e2e_results (
			id BIGSERIAL PRIMARY KEY,
			run_token UUID NOT NULL REFERENCES e2e_runs(token) ON DELETE CASCADE,
			scenario TEXT NOT NULL,
			group_name TEXT,
			status TEXT NOT NULL,
			duration_ms BIGINT,
			messages JSONB,
			screenshot_key TEXT,
			request_count INTEGER,
			started_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_e2e_results_scenario ON e2e_results(scenario, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_e2e_runs_started ON e2e_runs(site_id, started_at DESC);
	`)
	return err
}

// =============================================================================
// Runs
// =============================================================================

func (s *PostgresStore) UpsertRun(ctx context.Context, run *models.SuiteRun, host string) error {
	query := `
		INSERT INTO e2e_runs (token, site_id, host, mode, filter, started_at, finished_at, status, passed, failed, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (token) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			status = EXCLUDED.status,
			passed = EXCLUDED.passed,
			failed = EXCLUDED.failed,
			skipped = EXCLUDED.skipped`

	_, err := s.pool.Exec(ctx, query,
		run.Token, run.SiteID, host, run.Mode, run.Filter, run.StartedAt, run.FinishedAt,
		string(run.Status), run.Passed, run.Failed, run.Skipped,
	)
	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, token uuid.UUID) (*models.SuiteRun, error) {
	query := `
		SELECT token, site_id, mode, filter, started_at, finished_at, status, passed, failed, skipped
		FROM e2e_runs WHERE token = $1`

	var run models.SuiteRun
	var status string
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&run.Token, &run.SiteID, &run.Mode, &run.Filter, &run.StartedAt, &run.FinishedAt,
		&status, &run.Passed, &run.Failed, &run.Skipped,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	return &run, nil
}

// =============================================================================
// Results
// =============================================================================

func (s *PostgresStore) InsertResult(ctx context.Context, runToken uuid.UUID, res *models.ScenarioResult) error {
	query := `
		INSERT INTO e2e_results (run_token, scenario, group_name, status, duration_ms, messages,
			screenshot_key, request_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	messages := res.Messages
	if messages == nil {
		messages = []string{}
	}
	var id int64
	return s.pool.QueryRow(ctx, query,
		runToken, res.Scenario, res.Group, string(res.Status), res.Duration.Milliseconds(), messages,
		res.ScreenshotKey, res.RequestCount, res.StartedAt,
	).Scan(&id)
}

// FailureStreaks returns, per scenario, how many of its most recent results
// in a row have failed. Scenarios whose latest result passed are omitted.
func (s *PostgresStore) FailureStreaks(ctx context.Context, siteID string) (map[string]int, error) {
	query := `
		WITH ordered AS (
			SELECT r.scenario, r.status,
				ROW_NUMBER() OVER (PARTITION BY r.scenario ORDER BY r.started_at DESC) AS rn
			FROM e2e_results r
			JOIN e2e_runs u ON u.token = r.run_token
			WHERE u.site_id = $1 AND r.status <> 'skipped'
		),
		first_pass AS (
			SELECT scenario, MIN(rn) AS rn FROM ordered WHERE status = 'passed' GROUP BY scenario
		)
		SELECT o.scenario, COUNT(*)
		FROM ordered o
		LEFT JOIN first_pass p ON p.scenario = o.scenario
		WHERE o.status = 'failed' AND (p.rn IS NULL OR o.rn < p.rn)
		GROUP BY o.scenario`

	rows, err := s.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}
