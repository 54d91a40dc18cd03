package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"estate_e2e/auth"
	"estate_e2e/config"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	resultsHTML   = `<html><body><div class="listingCard">123 Main St</div></body></html>`
	incapsulaHTML = `<html><body><p>Request unsuccessful. Incapsula incident ID: 1234</p></body></html>`
)

// stubPage serves scripted snapshots. Anything else on playwright.Page panics.
type stubPage struct {
	playwright.Page

	mu    sync.Mutex
	url   string
	pages []string
	reads int
	gotos []string
}

func (p *stubPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *stubPage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.reads
	if i >= len(p.pages) {
		i = len(p.pages) - 1
	}
	p.reads++
	return p.pages[i], nil
}

func (p *stubPage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotos = append(p.gotos, url)
	p.url = url
	return nil, nil
}

func (p *stubPage) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

func (p *stubPage) Gotos() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.gotos...)
}

func stubEnv(mode config.RunMode, opener playwright.Page) *Env {
	site := &config.SiteConfig{
		ID:         "test",
		BaseURL:    "https://www.realtor.ca",
		Challenges: config.DefaultChallengeMarkers(),
	}
	return &Env{
		Ctx:       context.Background(),
		Site:      site,
		Mode:      mode,
		Page:      opener,
		Challenge: auth.NewChallengeHandler(site, mode, 5*time.Millisecond, time.Second),
	}
}

func TestEnvBase_TabGuardInspectsTab(t *testing.T) {
	opener := &stubPage{url: "https://www.realtor.ca/map", pages: []string{resultsHTML}}
	tab := &stubPage{url: "https://www.realtor.ca/real-estate/1", pages: []string{incapsulaHTML}}

	base := stubEnv(config.ModeHeadless, opener).Base()
	require.NoError(t, base.Check("/map"))

	err := base.On(tab).Check("")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrChallengeBlocked)

	assert.Equal(t, 1, opener.Reads())
	assert.Equal(t, 1, tab.Reads())
}

func TestEnvBase_TabResyncNavigatesTab(t *testing.T) {
	opener := &stubPage{url: "https://www.realtor.ca/map", pages: []string{resultsHTML}}
	tab := &stubPage{
		url:   "https://www.realtor.ca/verify",
		pages: []string{incapsulaHTML, resultsHTML},
	}

	base := stubEnv(config.ModeInteractive, opener).Base()
	require.NoError(t, base.On(tab).Check("/real-estate/1"))

	assert.Equal(t, []string{"https://www.realtor.ca/real-estate/1"}, tab.Gotos())
	assert.Empty(t, opener.Gotos())
	assert.Zero(t, opener.Reads())
}

func TestEnvBase_OnWithoutGuardFor(t *testing.T) {
	opener := &stubPage{url: "https://www.realtor.ca/map", pages: []string{resultsHTML}}
	base := stubEnv(config.ModeHeadless, opener).Base()
	base.GuardFor = nil

	tab := &stubPage{pages: []string{incapsulaHTML}}
	assert.NoError(t, base.On(tab).Check(""))
	assert.Zero(t, tab.Reads())
}
