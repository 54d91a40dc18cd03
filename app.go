package main

import (
	"context"
	"fmt"
	"log"

	"estate_e2e/browser"
	"estate_e2e/config"
	"estate_e2e/fixtures"
	"estate_e2e/httputil"
	"estate_e2e/logging"
	"estate_e2e/models"
	"estate_e2e/runner"
	"estate_e2e/scenarios"
	"estate_e2e/storage"
)

// app holds what every subcommand shares once config is loaded.
type app struct {
	cfg     *config.Config
	site    *config.SiteConfig
	store   *storage.SQLiteStore
	closers []func()
}

func newApp(logPath string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}

	a := &app{cfg: cfg}
	if w, err := logging.Setup(cfg.LogPath); err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		a.closers = append(a.closers, func() { w.Close() })
	}

	log.Printf("Loaded %d site configs", len(cfg.Sites))
	return a, nil
}

// open resolves the active site and the run store. Commands that only read
// config skip it.
func (a *app) open() error {
	site, err := a.cfg.Site()
	if err != nil {
		return err
	}
	a.site = site

	store, err := storage.NewSQLiteStore(a.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, func() { store.Close() })
	log.Printf("SQLite database: %s", a.cfg.Storage.DBPath)
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// credentials loads the named user type. A missing file is not fatal: the
// account scenarios skip themselves when login fails.
func (a *app) credentials(userType string) models.Credentials {
	all, err := fixtures.LoadCredentials(a.cfg.Fixtures.CredentialsPath)
	if err != nil {
		log.Printf("Warning: no credentials loaded: %v", err)
		return models.Credentials{}
	}
	creds, err := all.For(userType)
	if err != nil {
		log.Printf("Warning: %v", err)
		return models.Credentials{}
	}
	return creds
}

// preflight checks the site answers before a browser is started.
func (a *app) preflight(ctx context.Context) error {
	clients := httputil.NewClients(&a.cfg.Proxy)
	res, err := clients.Preflight(ctx, a.site.BaseURL)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	log.Printf("Preflight %s: %d in %s", res.URL, res.Status, res.Latency)
	if res.Location != "" {
		log.Printf("Preflight redirect to %s", res.Location)
	}
	return nil
}

// newRunner wires the full runner: browser, fixtures, stores and uploader.
func (a *app) newRunner(ctx context.Context, userType string) (*runner.Runner, error) {
	reg, err := scenarios.Registry()
	if err != nil {
		return nil, err
	}

	fx, err := fixtures.Load(a.cfg.Fixtures.DataPath)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	uploader, err := storage.NewUploader(ctx, a.cfg.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("artifact uploader: %w", err)
	}

	deps := runner.Deps{
		Registry:    reg,
		Launcher:    browser.NewLauncher(a.cfg),
		Store:       a.store,
		Uploader:    uploader,
		Fixtures:    fx,
		Credentials: a.credentials(userType),
	}

	if dsn := a.cfg.Storage.PostgresURL; dsn != "" {
		mirror, err := storage.NewPostgresStore(ctx, dsn)
		if err != nil {
			log.Printf("Warning: results mirror disabled: %v", err)
		} else {
			log.Printf("Mirroring results to %s", maskConnectionString(dsn))
			deps.Mirror = mirror
			a.closers = append(a.closers, mirror.Close)
		}
	}

	r := runner.New(a.cfg, a.site, deps)
	a.closers = append(a.closers, r.Close)
	return r, nil
}
