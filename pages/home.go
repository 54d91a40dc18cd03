package pages

import (
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"
)

type HomePage struct {
	*Base
}

func NewHomePage(b *Base) *HomePage {
	return &HomePage{Base: b}
}

func (p *HomePage) Open() error {
	if err := p.Goto(p.Site.Path("home")); err != nil {
		return err
	}
	p.AcceptConsent()
	return p.WaitVisible("search_input", waitTimeout)
}

// SearchLocation types query into the home search box and submits it, trying
// the first autocomplete suggestion, then the search button, then Enter.
func (p *HomePage) SearchLocation(query string) (Outcome, error) {
	if err := p.Fill("search_input", query); err != nil {
		return Outcome{Index: -1}, err
	}
	// Suggestions render asynchronously; not seeing one is fine.
	_ = p.WaitVisible("search_suggestion", probeTimeout)

	out, err := TryInOrder(
		p.ClickStrategy("suggestion", "search_suggestion"),
		p.ClickStrategy("search button", "search_button"),
		p.PressStrategy("enter", "search_input", "Enter"),
	)
	if err != nil {
		return out, fmt.Errorf("submit search %q: %w", query, err)
	}
	log.Printf("Search %q submitted via %s", query, out)

	err = p.Page.WaitForURL(p.Site.URL(p.Site.Path("map"))+"**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(float64(navigationTimeout.Milliseconds())),
	})
	if err != nil {
		return out, fmt.Errorf("search %q did not reach results: %w", query, err)
	}
	return out, p.Check(p.Site.Path("map"))
}

// SearchSuggestions types query and returns the autocomplete entries shown.
func (p *HomePage) SearchSuggestions(query string) ([]string, error) {
	if err := p.Fill("search_input", query); err != nil {
		return nil, err
	}
	if err := p.WaitVisible("search_suggestion", probeTimeout); err != nil {
		return nil, err
	}

	texts, err := p.Page.Locator(p.Site.Selector("search_suggestion")).AllInnerTexts()
	if err != nil {
		return nil, fmt.Errorf("read suggestions: %w", err)
	}
	return nonEmpty(texts), nil
}
