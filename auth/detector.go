// Package auth decides whether a browser session is logged in, waits out
// human-verification gates and drives the login form when needed.
package auth

import (
	"log"
	"net/url"
	"strings"
	"time"

	"estate_e2e/config"
	"estate_e2e/pages"

	"github.com/playwright-community/playwright-go"
)

// AuthSignals are the raw observations the detector collects from a page.
type AuthSignals struct {
	OnAuthHost         bool
	AccountVisible     bool
	LogoutFound        bool
	LoginFieldsVisible bool
}

// Classify turns signals into a verdict. Visible login fields only count
// against an account affordance, never against the host or a logout link.
func Classify(s AuthSignals) bool {
	switch {
	case s.OnAuthHost:
		return true
	case s.LogoutFound:
		return true
	case s.AccountVisible && !s.LoginFieldsVisible:
		return true
	default:
		return false
	}
}

// OnAuthHost reports whether rawURL is on the site's signed-in subdomain and
// not on its login form.
func OnAuthHost(rawURL string, site *config.SiteConfig) bool {
	if site.AuthHost == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Hostname(), site.AuthHost) {
		return false
	}
	if login, err := url.Parse(site.Path("login")); err == nil && login.Path != "" && login.Path != "/" {
		if strings.HasPrefix(strings.ToLower(u.Path), strings.ToLower(login.Path)) {
			return false
		}
	}
	return true
}

type Detector struct {
	Site      *config.SiteConfig
	MenuDelay time.Duration
}

func NewDetector(site *config.SiteConfig) *Detector {
	return &Detector{Site: site, MenuDelay: 750 * time.Millisecond}
}

// Signals probes the page. Probe failures leave the signal unset.
func (d *Detector) Signals(page playwright.Page) AuthSignals {
	s := AuthSignals{OnAuthHost: OnAuthHost(page.URL(), d.Site)}
	if s.OnAuthHost {
		return s
	}

	b := pages.NewBase(page, d.Site)
	s.LoginFieldsVisible = b.Visible("login_email") && b.Visible("login_password")
	s.AccountVisible = b.Visible("account_button")
	if s.AccountVisible {
		if err := b.Click("account_button"); err == nil {
			b.Settle(d.MenuDelay)
			s.LogoutFound = b.Visible("logout_link")
			_ = page.Keyboard().Press("Escape")
		}
	}
	return s
}

// IsLoggedIn never fails; anything it cannot observe counts as logged out.
func (d *Detector) IsLoggedIn(page playwright.Page) bool {
	s := d.Signals(page)
	ok := Classify(s)
	log.Printf("Login state: %v (auth host=%v account=%v logout=%v login form=%v)",
		ok, s.OnAuthHost, s.AccountVisible, s.LogoutFound, s.LoginFieldsVisible)
	return ok
}
