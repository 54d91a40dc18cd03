//go:build e2e

// Package e2e drives the registered scenarios through go test against the
// live site:
//
//	go test -tags e2e ./e2e -run 'TestScenarios/search'
package e2e

import (
	"context"
	"log"
	"os"
	"testing"

	"estate_e2e/browser"
	"estate_e2e/config"
	"estate_e2e/fixtures"
	"estate_e2e/runner"
	"estate_e2e/scenarios"
)

var suite *runner.Runner

// repoDefaults points relative paths at the repo root since go test runs
// from this directory.
var repoDefaults = map[string]string{
	"SITES_DIR":        "../config/sites",
	"FIXTURES_PATH":    "../fixtures/testdata.json",
	"CREDENTIALS_PATH": "../fixtures/credentials.json",
	"SESSION_PATH":     "../.auth/session.json",
	"SCREENSHOT_DIR":   "../test-results/screenshots",
}

func TestMain(m *testing.M) {
	for k, v := range repoDefaults {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	site, err := cfg.Site()
	if err != nil {
		log.Fatalf("site: %v", err)
	}
	fx, err := fixtures.Load(cfg.Fixtures.DataPath)
	if err != nil {
		log.Fatalf("fixtures: %v", err)
	}
	reg, err := scenarios.Registry()
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	creds, err := fixtures.LoadCredentials(cfg.Fixtures.CredentialsPath)
	if err != nil {
		log.Printf("Warning: no credentials loaded: %v", err)
	}
	user, err := creds.For(cfg.Auth.UserType)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	suite = runner.New(cfg, site, runner.Deps{
		Registry:    reg,
		Launcher:    browser.NewLauncher(cfg),
		Fixtures:    fx,
		Credentials: user,
	})

	code := m.Run()
	suite.Close()
	os.Exit(code)
}

func TestScenarios(t *testing.T) {
	for _, sc := range suite.Registry().All() {
		t.Run(sc.ID(), func(t *testing.T) {
			env, closeEnv, err := suite.OpenEnv(context.Background())
			if err != nil {
				t.Fatalf("open browser: %v", err)
			}
			defer closeEnv()

			if sc.NeedsAuth && !env.LoggedIn() {
				t.Skip("could not authenticate")
			}
			sc.Run(t, env)
		})
	}
}
