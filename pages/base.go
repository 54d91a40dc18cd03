// Package pages holds the page objects the scenarios drive. Every selector
// comes from the site config by logical name.
package pages

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estate_e2e/config"

	"github.com/playwright-community/playwright-go"
)

const (
	navigationTimeout = 60 * time.Second
	waitTimeout       = 15 * time.Second
	probeTimeout      = 5 * time.Second
)

// Guard runs after every navigation. The runner installs the challenge
// handler here so a gate on any page is dealt with before the next step.
type Guard func(returnPath string) error

// genericConsent is tried after the site's own consent selectors.
var genericConsent = []string{
	"button:has-text('Consent')",
	"button[id*='accept']",
	"button[class*='accept']",
	"button[class*='consent']",
	"button:has-text('Accept All')",
	"button:has-text('I Accept')",
	"button:has-text('Agree')",
}

type Base struct {
	Page  playwright.Page
	Site  *config.SiteConfig
	Guard Guard
	// GuardFor builds the guard for another page of the same session.
	GuardFor func(page playwright.Page) Guard
}

func NewBase(page playwright.Page, site *config.SiteConfig) *Base {
	return &Base{Page: page, Site: site}
}

// On returns a Base for another page of the session, such as a tab this page
// opened. Its guard inspects that page, not this one.
func (b *Base) On(page playwright.Page) *Base {
	nb := &Base{Page: page, Site: b.Site, GuardFor: b.GuardFor}
	if b.GuardFor != nil {
		nb.Guard = b.GuardFor(page)
	}
	return nb
}

// Goto navigates to a site path or absolute URL and then runs the guard.
func (b *Base) Goto(path string) error {
	target := b.Site.URL(path)
	log.Printf("Navigating to: %s", target)

	_, err := b.Page.Goto(target, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}

	return b.Check(path)
}

// Check runs the guard against the current page without navigating.
func (b *Base) Check(returnPath string) error {
	if b.Guard == nil {
		return nil
	}
	return b.Guard(returnPath)
}

func (b *Base) URL() string {
	return b.Page.URL()
}

func (b *Base) selector(name string) (string, error) {
	sel := b.Site.Selector(name)
	if sel == "" {
		return "", fmt.Errorf("selector %q not configured for %s", name, b.Site.ID)
	}
	return sel, nil
}

// Locator returns the first element matching the named selector.
func (b *Base) Locator(name string) (playwright.Locator, error) {
	sel, err := b.selector(name)
	if err != nil {
		return nil, err
	}
	return b.Page.Locator(sel).First(), nil
}

// Visible reports whether the named element is on screen right now.
func (b *Base) Visible(name string) bool {
	loc, err := b.Locator(name)
	if err != nil {
		return false
	}
	visible, _ := loc.IsVisible()
	return visible
}

func (b *Base) WaitVisible(name string, timeout time.Duration) error {
	loc, err := b.Locator(name)
	if err != nil {
		return err
	}
	err = loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", name, err)
	}
	return nil
}

func (b *Base) Text(name string) (string, error) {
	loc, err := b.Locator(name)
	if err != nil {
		return "", err
	}
	text, err := loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(float64(probeTimeout.Milliseconds())),
	})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return text, nil
}

func (b *Base) Click(name string) error {
	loc, err := b.Locator(name)
	if err != nil {
		return err
	}
	if err := loc.Click(); err != nil {
		return fmt.Errorf("click %s: %w", name, err)
	}
	return nil
}

func (b *Base) Fill(name, value string) error {
	loc, err := b.Locator(name)
	if err != nil {
		return err
	}
	if err := loc.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", name, err)
	}
	return nil
}

// Count returns how many elements match the named selector.
func (b *Base) Count(name string) int {
	sel, err := b.selector(name)
	if err != nil {
		return 0
	}
	n, _ := b.Page.Locator(sel).Count()
	return n
}

func (b *Base) Settle(d time.Duration) {
	b.Page.WaitForTimeout(float64(d.Milliseconds()))
}

// ClickStrategy clicks the named element if it is visible and enabled.
func (b *Base) ClickStrategy(label, name string) Strategy {
	return Strategy{Name: label, Try: func() error {
		loc, err := b.Locator(name)
		if err != nil {
			return err
		}
		return clickIfReady(loc)
	}}
}

// RawClickStrategy is ClickStrategy for a selector outside the site config.
func (b *Base) RawClickStrategy(label, selector string) Strategy {
	return Strategy{Name: label, Try: func() error {
		return clickIfReady(b.Page.Locator(selector).First())
	}}
}

// PressStrategy focuses the named element and presses key.
func (b *Base) PressStrategy(label, name, key string) Strategy {
	return Strategy{Name: label, Try: func() error {
		loc, err := b.Locator(name)
		if err != nil {
			return err
		}
		if visible, _ := loc.IsVisible(); !visible {
			return errNotVisible
		}
		return loc.Press(key)
	}}
}

var (
	errNotVisible = errors.New("not visible")
	errDisabled   = errors.New("disabled")
)

func clickIfReady(loc playwright.Locator) error {
	if visible, _ := loc.IsVisible(); !visible {
		return errNotVisible
	}
	if disabled, _ := loc.GetAttribute("disabled"); disabled != "" {
		return errDisabled
	}
	return loc.Click()
}

// AcceptConsent dismisses a cookie banner if one is showing. Having no banner
// is not an error.
func (b *Base) AcceptConsent() Outcome {
	var strategies []Strategy
	for _, name := range []string{"consent", "consent_fallback"} {
		if b.Site.Selector(name) != "" {
			strategies = append(strategies, b.ClickStrategy(name, name))
		}
	}
	for _, sel := range genericConsent {
		strategies = append(strategies, b.RawClickStrategy(sel, sel))
	}

	out, err := TryInOrder(strategies...)
	if err != nil {
		return out
	}
	log.Printf("Clicked consent button: %s", out.Strategy)
	b.Page.WaitForTimeout(2000)
	return out
}

func nonEmpty(texts []string) []string {
	var out []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
