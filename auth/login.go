package auth

import (
	"context"
	"log"
	"time"

	"estate_e2e/config"
	"estate_e2e/models"
	"estate_e2e/pages"
	"estate_e2e/session"

	"github.com/playwright-community/playwright-go"
)

// Verifier decides whether a page is logged in. *Detector is the live one.
type Verifier interface {
	IsLoggedIn(page playwright.Page) bool
}

// Gate deals with human-verification pages. *ChallengeHandler is the live one.
type Gate interface {
	Guard(ctx context.Context, s Surface) pages.Guard
	Resolve(ctx context.Context, s Surface, returnPath string) error
}

// Snapshots keeps cookies between runs. *session.Store is the live one.
type Snapshots interface {
	Valid() bool
	Restore(page playwright.Page) error
	Persist(page playwright.Page) (int, error)
}

// LoginForm is the part of the login page the orchestration drives.
type LoginForm interface {
	Open() error
	FillCredentials(creds models.Credentials) error
	Submit() (pages.Outcome, error)
	ErrorMessage() string
	Settle(d time.Duration)
}

// Authenticator makes a page logged in, preferring the saved cookie snapshot
// over the login form.
type Authenticator struct {
	Site        *config.SiteConfig
	Detector    Verifier
	Challenge   Gate
	Sessions    Snapshots
	Credentials models.Credentials
	SettleDelay time.Duration

	// NewForm builds the login form on a guarded base.
	NewForm func(b *pages.Base) LoginForm
}

func NewAuthenticator(cfg *config.Config, site *config.SiteConfig, creds models.Credentials) *Authenticator {
	return &Authenticator{
		Site:        site,
		Detector:    NewDetector(site),
		Challenge:   NewChallengeHandler(site, cfg.Browser.Mode, cfg.Auth.ChallengePoll, cfg.Auth.ChallengeLimit),
		Sessions:    session.NewStore(cfg.Auth.SessionPath, site.BaseURL),
		Credentials: creds,
		SettleDelay: cfg.Auth.SettleDelay,
		NewForm: func(b *pages.Base) LoginForm {
			return pages.NewLoginPage(b)
		},
	}
}

// Ensure returns true once the page is logged in. It is safe to call
// repeatedly. A false result is not fatal; callers skip what needs a login.
func (a *Authenticator) Ensure(ctx context.Context, page playwright.Page) bool {
	if ctx.Err() != nil {
		return false
	}
	if a.Detector.IsLoggedIn(page) {
		return true
	}

	if a.restoreSession(ctx, page) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	return a.formLogin(ctx, page)
}

func (a *Authenticator) restoreSession(ctx context.Context, page playwright.Page) bool {
	if !a.Sessions.Valid() {
		return false
	}
	if err := a.Sessions.Restore(page); err != nil {
		log.Printf("Failed to apply saved session: %v", err)
		return false
	}

	b := a.base(ctx, page)
	if err := b.Goto(a.Site.Path("account")); err != nil {
		log.Printf("Saved session check failed: %v", err)
		return false
	}
	b.Settle(a.SettleDelay)

	if a.Detector.IsLoggedIn(page) {
		log.Println("Restored saved session")
		return true
	}
	log.Println("Saved session is stale, falling back to form login")
	return false
}

func (a *Authenticator) formLogin(ctx context.Context, page playwright.Page) bool {
	if a.Credentials.Email == "" || a.Credentials.Password == "" {
		log.Println("No credentials available for form login")
		return false
	}

	login := a.NewForm(a.base(ctx, page))
	if err := login.Open(); err != nil {
		log.Printf("Login page failed: %v", err)
		return false
	}
	if err := login.FillCredentials(a.Credentials); err != nil {
		log.Printf("Login form fill failed: %v", err)
		return false
	}
	out, err := login.Submit()
	if err != nil {
		log.Printf("Login submit failed: %v", err)
		return false
	}
	log.Printf("Login submitted via %s", out)

	if err := a.Challenge.Resolve(ctx, page, a.Site.Path("account")); err != nil {
		log.Printf("Login blocked: %v", err)
		return false
	}
	login.Settle(a.SettleDelay)

	if !a.Detector.IsLoggedIn(page) {
		if msg := login.ErrorMessage(); msg != "" {
			log.Printf("Login rejected: %s", msg)
		} else {
			log.Println("Login did not take effect")
		}
		return false
	}

	n, err := a.Sessions.Persist(page)
	if err != nil {
		log.Printf("Failed to save session: %v", err)
	} else {
		log.Printf("Saved session with %d cookies", n)
	}
	return true
}

func (a *Authenticator) base(ctx context.Context, page playwright.Page) *pages.Base {
	b := pages.NewBase(page, a.Site)
	b.GuardFor = func(p playwright.Page) pages.Guard {
		return a.Challenge.Guard(ctx, p)
	}
	b.Guard = b.GuardFor(page)
	return b
}
