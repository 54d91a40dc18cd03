// Package netmock records what a page requests and answers selected requests
// with canned bodies.
package netmock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"estate_e2e/config"
	"estate_e2e/fixtures"
	"estate_e2e/models"

	"github.com/playwright-community/playwright-go"
)

var ErrNotObserving = errors.New("harness has no page; call Observe first")

// Harness belongs to one scenario. Playwright fires request events from its
// own goroutine, so every access to the log goes through mu.
type Harness struct {
	site     *config.SiteConfig
	fixtures *fixtures.Set

	mu        sync.Mutex
	page      playwright.Page
	log       []models.InterceptedRequest
	mocked    map[string]bool
	responses map[string][]byte
}

func New(site *config.SiteConfig, fx *fixtures.Set) *Harness {
	return &Harness{
		site:      site,
		fixtures:  fx,
		mocked:    make(map[string]bool),
		responses: make(map[string][]byte),
	}
}

// Observe starts recording every request the page makes, in arrival order,
// and keeps the last body of each configured API for Listings.
func (h *Harness) Observe(page playwright.Page) {
	h.mu.Lock()
	h.page = page
	h.mu.Unlock()

	page.OnRequest(func(r playwright.Request) {
		h.record(r.URL(), r.Method(), r.ResourceType())
	})
	page.OnResponse(func(r playwright.Response) {
		name := h.apiFor(r.URL())
		if name == "" || r.Status() != 200 {
			return
		}
		go func() {
			body, err := r.Body()
			if err != nil || len(body) == 0 {
				return
			}
			h.mu.Lock()
			h.responses[name] = body
			h.mu.Unlock()
			log.Printf("Captured %s response: %d bytes", name, len(body))
		}()
	})
}

func (h *Harness) record(url, method, resourceType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, models.InterceptedRequest{
		Seq:          len(h.log) + 1,
		URL:          url,
		Method:       method,
		ResourceType: resourceType,
		Mocked:       h.mocked[url],
	})
}

// Mock answers requests matching pattern with status and body. When several
// registered patterns match one request, which handler answers is up to
// Playwright's routing; callers should not rely on either order.
func (h *Harness) Mock(pattern string, status int, body []byte) error {
	h.mu.Lock()
	page := h.page
	h.mu.Unlock()
	if page == nil {
		return ErrNotObserving
	}

	err := page.Route(pattern, func(route playwright.Route) {
		url := route.Request().URL()
		h.markMocked(url)
		if err := route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(status),
			Body:        body,
			ContentType: playwright.String(contentType(body)),
			Headers:     map[string]string{"Access-Control-Allow-Origin": "*"},
		}); err != nil {
			log.Printf("Mock fulfil failed for %s: %v", url, err)
		}
	})
	if err != nil {
		return fmt.Errorf("route %s: %w", pattern, err)
	}
	log.Printf("Mocking %s with %d (%d bytes)", pattern, status, len(body))
	return nil
}

// MockAPI serves the fixture body named fixture for the site API named api.
// An empty fixture name reuses the API name.
func (h *Harness) MockAPI(api, fixture string) error {
	pattern, ok := h.site.APIs[api]
	if !ok || pattern == "" {
		return fmt.Errorf("api %q not configured for %s", api, h.site.ID)
	}
	if fixture == "" {
		fixture = api
	}
	if h.fixtures == nil {
		return fmt.Errorf("mock %s: no fixtures loaded", api)
	}
	body, err := h.fixtures.MockAPI(fixture)
	if err != nil {
		return fmt.Errorf("mock %s: %w", api, err)
	}
	return h.Mock(pattern, 200, body)
}

// Unmock removes every handler registered for pattern.
func (h *Harness) Unmock(pattern string) error {
	h.mu.Lock()
	page := h.page
	h.mu.Unlock()
	if page == nil {
		return ErrNotObserving
	}
	return page.Unroute(pattern)
}

func (h *Harness) markMocked(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mocked[url] = true
	for i := len(h.log) - 1; i >= 0; i-- {
		if h.log[i].URL == url {
			h.log[i].Mocked = true
			break
		}
	}
}

// Observed reports whether any recorded URL contains substr. The match is
// literal and case-sensitive.
func (h *Harness) Observed(substr string) bool {
	return h.Count(substr) > 0
}

// Count returns how many recorded URLs contain substr.
func (h *Harness) Count(substr string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.log {
		if strings.Contains(e.URL, substr) {
			n++
		}
	}
	return n
}

// WaitObserved polls until substr has been seen or timeout passes.
func (h *Harness) WaitObserved(ctx context.Context, substr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if h.Observed(substr) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// URLs returns a copy of the recorded URLs in arrival order.
func (h *Harness) URLs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.log))
	for i, e := range h.log {
		out[i] = e.URL
	}
	return out
}

// Entries returns a copy of the full log.
func (h *Harness) Entries() []models.InterceptedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.InterceptedRequest, len(h.log))
	copy(out, h.log)
	return out
}

func (h *Harness) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log)
}

// Reset clears the log and captured responses. Routes stay installed.
func (h *Harness) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = nil
	h.mocked = make(map[string]bool)
	h.responses = make(map[string][]byte)
}

// Response returns the last captured body for a site API.
func (h *Harness) Response(api string) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	body, ok := h.responses[api]
	return body, ok
}

// Listings parses the last captured property search response.
func (h *Harness) Listings(api string) ([]models.ListingCard, error) {
	body, ok := h.Response(api)
	if !ok {
		return nil, fmt.Errorf("no %s response captured", api)
	}
	return ParsePropertySearch(body, h.site.BaseURL)
}

func (h *Harness) apiFor(url string) string {
	for name, pattern := range h.site.APIs {
		if MatchGlob(pattern, url) {
			return name
		}
	}
	return ""
}

func contentType(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "application/json"
	}
	return "text/plain"
}
