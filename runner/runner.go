// Package runner executes scenarios one after another, each on a fresh
// browser context, and records what happened.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"estate_e2e/auth"
	"estate_e2e/browser"
	"estate_e2e/config"
	"estate_e2e/fixtures"
	"estate_e2e/logging"
	"estate_e2e/models"
	"estate_e2e/netmock"
	"estate_e2e/storage"

	"github.com/google/uuid"
)

var ErrNoScenarios = errors.New("no scenarios match filter")

// Deps are the collaborators a Runner needs. Mirror and Uploader are optional.
type Deps struct {
	Registry    *Registry
	Launcher    *browser.Launcher
	Store       *storage.SQLiteStore
	Mirror      *storage.PostgresStore
	Uploader    storage.ArtifactUploader
	Fixtures    *fixtures.Set
	Credentials models.Credentials
}

type Runner struct {
	cfg  *config.Config
	site *config.SiteConfig
	deps Deps
	host string

	mu      sync.Mutex
	paused  bool
	running bool
}

func New(cfg *config.Config, site *config.SiteConfig, deps Deps) *Runner {
	if deps.Uploader == nil {
		deps.Uploader = storage.NoopUploader{}
	}
	host, _ := os.Hostname()
	return &Runner{cfg: cfg, site: site, deps: deps, host: host}
}

// Run executes every scenario matching f in registration order. Scenario
// failures are recorded, not returned; the error is for problems running
// the suite itself.
func (r *Runner) Run(ctx context.Context, f Filter) (*models.SuiteRun, error) {
	scenarios := r.deps.Registry.Select(f)
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoScenarios, f)
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, errors.New("a run is already in progress")
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	run := &models.SuiteRun{
		Token:     uuid.New(),
		SiteID:    r.site.ID,
		Mode:      string(r.cfg.Browser.Mode),
		Filter:    f.String(),
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	runID, err := r.deps.Store.CreateRun(run)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	run.ID = runID
	r.mirrorRun(ctx, run)

	logf := r.logFunc(run.ID)
	logf(models.LogLevelInfo, "runner", fmt.Sprintf("Starting %d scenarios against %s (%s, %s)",
		len(scenarios), r.site.Name, run.Mode, run.Filter))

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err := r.deps.Store.UpdateRun(run); err != nil {
			log.Printf("Failed to update run %d: %v", run.ID, err)
		}
		r.mirrorRun(context.WithoutCancel(ctx), run)
	}()

	if err := r.deps.Launcher.Start(); err != nil {
		run.Status = models.RunStatusFailed
		logf(models.LogLevelError, "runner", fmt.Sprintf("Browser failed to start: %v", err))
		return run, fmt.Errorf("start browser: %w", err)
	}

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			run.Status = models.RunStatusFailed
			logf(models.LogLevelWarn, "runner", "Run cancelled")
			return run, ctx.Err()
		}

		out := r.runOne(ctx, run, sc, logf)
		run.Record(out.result)
		r.persist(ctx, run, out, logf)
	}

	run.Status = models.RunStatusCompleted
	logf(models.LogLevelInfo, "runner", fmt.Sprintf("Completed: %d passed, %d failed, %d skipped",
		run.Passed, run.Failed, run.Skipped))
	return run, nil
}

type scenarioOutcome struct {
	result   *models.ScenarioResult
	requests []models.InterceptedRequest
}

func (r *Runner) runOne(ctx context.Context, run *models.SuiteRun, sc Scenario, logf logging.Func) *scenarioOutcome {
	res := &models.ScenarioResult{
		RunID:     run.ID,
		Scenario:  sc.ID(),
		Group:     sc.Group,
		StartedAt: time.Now(),
	}
	out := &scenarioOutcome{result: res}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	logf(models.LogLevelInfo, sc.ID(), "Starting")

	sess, err := r.deps.Launcher.NewSession()
	if err != nil {
		res.Status = models.ResultFailed
		res.Messages = []string{fmt.Sprintf("new browser session: %v", err)}
		logf(models.LogLevelError, sc.ID(), res.Messages[0])
		return out
	}
	defer sess.Close()

	env := r.NewEnv(ctx, sess)
	defer func() {
		out.requests = env.Net.Entries()
		res.RequestCount = len(out.requests)
	}()

	if sc.NeedsAuth && !env.LoggedIn() {
		res.Status = models.ResultSkipped
		res.Messages = []string{"login unavailable, skipping"}
		logf(models.LogLevelWarn, sc.ID(), res.Messages[0])
		return out
	}

	rec := newRecorder(sc.ID())
	execute(rec, func(t T) { sc.Run(t, env) })
	res.Messages = rec.Messages()

	switch {
	case rec.Failed():
		res.Status = models.ResultFailed
		res.ScreenshotKey = r.captureFailure(ctx, run, sc, sess)
		logf(models.LogLevelError, sc.ID(), "FAILED: "+strings.Join(res.Messages, "; "))
	case rec.Skipped():
		res.Status = models.ResultSkipped
		logf(models.LogLevelWarn, sc.ID(), "Skipped: "+strings.Join(res.Messages, "; "))
	default:
		res.Status = models.ResultPassed
		logf(models.LogLevelInfo, sc.ID(), "Passed")
	}
	return out
}

// OpenEnv starts a standalone environment outside a suite run. The returned
// func closes its browser context.
func (r *Runner) OpenEnv(ctx context.Context) (*Env, func(), error) {
	sess, err := r.deps.Launcher.NewSession()
	if err != nil {
		return nil, nil, err
	}
	return r.NewEnv(ctx, sess), sess.Close, nil
}

// NewEnv wires a scenario environment onto a browser session.
func (r *Runner) NewEnv(ctx context.Context, sess *browser.Session) *Env {
	challenge := auth.NewChallengeHandler(r.site, r.cfg.Browser.Mode, r.cfg.Auth.ChallengePoll, r.cfg.Auth.ChallengeLimit)

	authn := auth.NewAuthenticator(r.cfg, r.site, r.deps.Credentials)
	authn.Challenge = challenge

	harness := netmock.New(r.site, r.deps.Fixtures)
	harness.Observe(sess.Page)

	return &Env{
		Ctx:         ctx,
		Site:        r.site,
		Mode:        r.cfg.Browser.Mode,
		Page:        sess.Page,
		Fixtures:    r.deps.Fixtures,
		Credentials: r.deps.Credentials,
		Net:         harness,
		Challenge:   challenge,
		Auth:        authn,
		SessionPath: r.cfg.Auth.SessionPath,
	}
}

// captureFailure saves a screenshot and page dump locally and ships the
// screenshot to the artifact store. It returns the stored key, or the local
// path when nothing was uploaded.
func (r *Runner) captureFailure(ctx context.Context, run *models.SuiteRun, sc Scenario, sess *browser.Session) string {
	path, png, err := sess.Screenshot(sc.ID())
	if err != nil {
		log.Printf("Screenshot failed for %s: %v", sc.ID(), err)
		return ""
	}
	if _, err := sess.DumpHTML(sc.ID()); err != nil {
		log.Printf("HTML dump failed for %s: %v", sc.ID(), err)
	}

	key, err := r.deps.Uploader.Upload(ctx, run.Token, sc.ID(), "failure.png", png, "image/png")
	if err != nil {
		log.Printf("Screenshot upload failed for %s: %v", sc.ID(), err)
		return path
	}
	if key == "" {
		return path
	}
	return key
}

func (r *Runner) persist(ctx context.Context, run *models.SuiteRun, out *scenarioOutcome, logf logging.Func) {
	res := out.result
	resultID, err := r.deps.Store.SaveResult(res)
	if err != nil {
		logf(models.LogLevelError, res.Scenario, fmt.Sprintf("Failed to save result: %v", err))
		return
	}
	res.ID = resultID
	if err := r.deps.Store.SaveRequests(resultID, out.requests); err != nil {
		logf(models.LogLevelWarn, res.Scenario, fmt.Sprintf("Failed to save request log: %v", err))
	}
	if err := r.deps.Store.UpdateRun(run); err != nil {
		log.Printf("Failed to update run %d: %v", run.ID, err)
	}

	if r.deps.Mirror != nil {
		if err := r.deps.Mirror.InsertResult(ctx, run.Token, res); err != nil {
			log.Printf("Warning: failed to mirror result %s: %v", res.Scenario, err)
		}
	}
}

func (r *Runner) mirrorRun(ctx context.Context, run *models.SuiteRun) {
	if r.deps.Mirror == nil {
		return
	}
	if err := r.deps.Mirror.UpsertRun(ctx, run, r.host); err != nil {
		log.Printf("Warning: failed to mirror run: %v", err)
	}
}

func (r *Runner) logFunc(runID int64) logging.Func {
	store := func(level models.LogLevel, scope, message string) {
		if err := r.deps.Store.Log(&runID, level, message, scope); err != nil {
			log.Printf("Failed to store log line: %v", err)
		}
	}
	return logging.Tee(logging.Std, store)
}

// HandleCommand applies a queued control command.
func (r *Runner) HandleCommand(ctx context.Context, cmd *models.Command) error {
	params, err := storage.ParseCommandParams(cmd)
	if err != nil {
		return err
	}

	switch cmd.Command {
	case models.CmdRunNow:
		return r.RunIfActive(ctx, Filter{Group: params.Group, Grep: params.Grep})
	case models.CmdRunGroup:
		if params.Group == "" {
			return fmt.Errorf("%s needs a group", cmd.Command)
		}
		return r.RunIfActive(ctx, Filter{Group: params.Group, Grep: params.Grep})
	case models.CmdPause:
		r.SetPaused(true)
		log.Println("Runner paused")
	case models.CmdResume:
		r.SetPaused(false)
		log.Println("Runner resumed")
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	return nil
}

// RunIfActive is Run unless the runner is paused.
func (r *Runner) RunIfActive(ctx context.Context, f Filter) error {
	if r.IsPaused() {
		log.Println("Runner is paused, skipping run")
		return nil
	}
	_, err := r.Run(ctx, f)
	return err
}

func (r *Runner) SetPaused(p bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = p
}

func (r *Runner) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

func (r *Runner) Close() {
	r.deps.Launcher.Stop()
}

// Registry returns the scenarios this runner was built with.
func (r *Runner) Registry() *Registry {
	return r.deps.Registry
}
