package runner

import (
	"context"

	"estate_e2e/auth"
	"estate_e2e/config"
	"estate_e2e/fixtures"
	"estate_e2e/models"
	"estate_e2e/netmock"
	"estate_e2e/pages"

	"github.com/playwright-community/playwright-go"
)

// Env is everything one scenario works with. It is built fresh for each
// scenario on its own browser context.
type Env struct {
	Ctx         context.Context
	Site        *config.SiteConfig
	Mode        config.RunMode
	Page        playwright.Page
	Fixtures    *fixtures.Set
	Credentials models.Credentials
	Net         *netmock.Harness
	Challenge   *auth.ChallengeHandler
	Auth        *auth.Authenticator
	SessionPath string
}

// Base returns a page-object base whose navigations run the challenge check.
func (e *Env) Base() *pages.Base {
	b := pages.NewBase(e.Page, e.Site)
	b.GuardFor = func(page playwright.Page) pages.Guard {
		return e.Challenge.Guard(e.Ctx, page)
	}
	b.Guard = b.GuardFor(e.Page)
	return b
}

func (e *Env) Home() *pages.HomePage       { return pages.NewHomePage(e.Base()) }
func (e *Env) Login() *pages.LoginPage     { return pages.NewLoginPage(e.Base()) }
func (e *Env) Map() *pages.MapPage         { return pages.NewMapPage(e.Base()) }
func (e *Env) Results() *pages.ResultsPage { return pages.NewResultsPage(e.Base()) }

// LoggedIn runs the login orchestration for this scenario's page.
func (e *Env) LoggedIn() bool {
	return e.Auth.Ensure(e.Ctx, e.Page)
}

// SearchData returns the search fixture or fails the scenario.
func (e *Env) SearchData(t T) *fixtures.SearchData {
	t.Helper()
	d, err := e.Fixtures.Search()
	if err != nil {
		t.Errorf("search fixture: %v", err)
		t.FailNow()
	}
	return d
}

// FilterData returns the filter fixture or fails the scenario.
func (e *Env) FilterData(t T) *fixtures.FilterData {
	t.Helper()
	d, err := e.Fixtures.Filters()
	if err != nil {
		t.Errorf("filters fixture: %v", err)
		t.FailNow()
	}
	return d
}
