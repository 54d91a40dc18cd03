package pages

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"estate_e2e/fixtures"
	"estate_e2e/models"
	"estate_e2e/normalize"

	"github.com/playwright-community/playwright-go"
)

type View string

const (
	ViewList View = "list"
	ViewGrid View = "grid"
	ViewMap  View = "map"
)

func (v View) selector() string {
	return string(v) + "_view_button"
}

// ViewOutcome says how SwitchView got into the requested view.
type ViewOutcome int

const (
	// ViewSwitched means the toggle was clicked.
	ViewSwitched ViewOutcome = iota
	// ViewAssumedActive means no toggle was visible and the page is assumed
	// to already be in that view. Nothing has verified it.
	ViewAssumedActive
)

func (o ViewOutcome) String() string {
	if o == ViewSwitched {
		return "switched"
	}
	return "assumed-active"
}

const resultsPoll = 500 * time.Millisecond

type ResultsPage struct {
	*Base
	// Wait bounds WaitForResults.
	Wait time.Duration
}

func NewResultsPage(b *Base) *ResultsPage {
	return &ResultsPage{Base: b, Wait: 10 * time.Second}
}

// WaitForResults polls until at least one listing card renders, running the
// guard on each tick so a challenge that appears mid-wait is handled. It
// returns the card count seen.
func (p *ResultsPage) WaitForResults(ctx context.Context) (int, error) {
	deadline := time.Now().Add(p.Wait)
	for {
		if n := p.CardCount(); n > 0 {
			return n, nil
		}
		if err := p.Check(p.Site.Path("map")); err != nil {
			return 0, err
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("no listing cards after %s", p.Wait)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(resultsPoll):
		}
	}
}

func (p *ResultsPage) CardCount() int {
	return p.Count("result_card")
}

// Cards parses the listing cards out of the current DOM.
func (p *ResultsPage) Cards() ([]models.ListingCard, error) {
	html, err := p.Page.Content()
	if err != nil {
		return nil, fmt.Errorf("read results html: %w", err)
	}
	return ParseCards(html, p.Site)
}

func (p *ResultsPage) CardPrices() ([]int, error) {
	cards, err := p.Cards()
	if err != nil {
		return nil, err
	}
	prices := make([]int, 0, len(cards))
	for _, c := range cards {
		if c.Price > 0 {
			prices = append(prices, c.Price)
		}
	}
	return prices, nil
}

// TotalCount reads the "N results" counter.
func (p *ResultsPage) TotalCount() (int, error) {
	text, err := p.Text("results_count")
	if err != nil {
		return 0, err
	}
	return normalize.LeadingInt(text), nil
}

func (p *ResultsPage) OpenFilters() error {
	if err := p.Click("filters_button"); err != nil {
		return err
	}
	return p.WaitVisible("price_min", waitTimeout)
}

func (p *ResultsPage) ApplyPriceRange(r fixtures.Range) error {
	if err := p.selectValue("price_min", strconv.Itoa(r.Min)); err != nil {
		return err
	}
	if r.Max > 0 {
		return p.selectValue("price_max", strconv.Itoa(r.Max))
	}
	return nil
}

// ApplyBedrooms picks "n+" in the bedrooms dropdown.
func (p *ResultsPage) ApplyBedrooms(n int) error {
	return p.selectValue("beds_select", fmt.Sprintf("%d-0", n))
}

// ApplyKeyword ticks the UI control mapped to a keyword by the fixtures.
func (p *ResultsPage) ApplyKeyword(control string) error {
	loc := p.Page.Locator(control).First()
	if err := loc.Check(); err != nil {
		return fmt.Errorf("check %s: %w", control, err)
	}
	return nil
}

func (p *ResultsPage) ApplyFilters() (Outcome, error) {
	out, err := TryInOrder(
		p.ClickStrategy("apply button", "filters_apply"),
		p.PressStrategy("enter", "keywords_input", "Enter"),
	)
	if err != nil {
		return out, fmt.Errorf("apply filters: %w", err)
	}
	return out, p.Check(p.Site.Path("map"))
}

func (p *ResultsPage) SortBy(value string) error {
	return p.selectValue("sort_select", value)
}

func (p *ResultsPage) selectValue(name, value string) error {
	loc, err := p.Locator(name)
	if err != nil {
		return err
	}
	if _, err := loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
		return fmt.Errorf("select %s=%s: %w", name, value, err)
	}
	return nil
}

// SwitchView clicks the toggle for v. A missing toggle is reported as
// ViewAssumedActive rather than an error.
func (p *ResultsPage) SwitchView(v View) (ViewOutcome, error) {
	name := v.selector()
	if p.Site.Selector(name) == "" {
		return ViewAssumedActive, fmt.Errorf("no toggle configured for %s view", v)
	}

	out, err := TryInOrder(p.ClickStrategy(string(v)+" toggle", name))
	if err != nil {
		log.Printf("View toggle for %s not clickable, assuming already active: %v", v, err)
		return ViewAssumedActive, nil
	}
	log.Printf("Switched to %s view via %s", v, out)
	return ViewSwitched, nil
}

// NextPage advances the pagination, returning which control worked.
func (p *ResultsPage) NextPage() (Outcome, error) {
	out, err := TryInOrder(
		p.ClickStrategy("next link", "next_page"),
		p.ClickStrategy("next aria link", "next_page_fallback"),
	)
	if err != nil {
		return out, fmt.Errorf("could not find clickable next button: %w", err)
	}
	log.Printf("Clicked next button: %s", out.Strategy)
	p.Settle(time.Second)
	return out, nil
}

// OpenListing opens the i-th result card. Cards that open a new tab are
// followed into it.
func (p *ResultsPage) OpenListing(i int) (*ListingPage, error) {
	sel := p.Site.Selector("result_link")
	if sel == "" {
		return nil, fmt.Errorf("selector %q not configured for %s", "result_link", p.Site.ID)
	}
	link := p.Page.Locator(sel).Nth(i)
	if visible, _ := link.IsVisible(); !visible {
		return nil, fmt.Errorf("result %d not visible", i)
	}

	target, _ := link.GetAttribute("target")
	if target == "_blank" {
		tab, err := p.Page.Context().ExpectPage(func() error {
			return link.Click()
		}, playwright.BrowserContextExpectPageOptions{
			Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
		})
		if err != nil {
			return nil, fmt.Errorf("open result %d in new tab: %w", i, err)
		}
		if err := tab.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateDomcontentloaded,
		}); err != nil {
			return nil, fmt.Errorf("load result %d: %w", i, err)
		}
		listing := NewListingPage(p.On(tab))
		if err := listing.Check(""); err != nil {
			return nil, err
		}
		return listing, nil
	}

	if err := link.Click(); err != nil {
		return nil, fmt.Errorf("open result %d: %w", i, err)
	}
	if err := p.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("load result %d: %w", i, err)
	}
	listing := NewListingPage(p.Base)
	if err := listing.Check(""); err != nil {
		return nil, err
	}
	return listing, nil
}
