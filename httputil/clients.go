package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"estate_e2e/config"
)

type Clients struct {
	Site *http.Client // proxied like the browser, for the target site
	API  *http.Client // direct, for artifact and results services
}

func NewClients(proxyCfg *config.ProxyConfig) *Clients {
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
		TLSNextProto:      make(map[string]func(string, *tls.Conn) http.RoundTripper),
	}
	if proxyCfg != nil && proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	site := &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Clients{
		Site: site,
		API:  &http.Client{Timeout: 30 * time.Second},
	}
}

// PreflightResult describes one reachability probe of the target site.
type PreflightResult struct {
	URL      string
	Status   int
	Latency  time.Duration
	Location string
}

// Preflight checks that baseURL answers before a browser is launched. Any
// HTTP response counts as reachable; 403 is common from bot protection and
// is left for the challenge handler to deal with in the browser.
func (c *Clients) Preflight(ctx context.Context, baseURL string) (*PreflightResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("preflight %s: %w", baseURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	start := time.Now()
	resp, err := c.Site.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preflight %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	res := &PreflightResult{
		URL:      baseURL,
		Status:   resp.StatusCode,
		Latency:  time.Since(start),
		Location: resp.Header.Get("Location"),
	}
	if resp.StatusCode >= 500 {
		return res, fmt.Errorf("preflight %s: server error %d", baseURL, resp.StatusCode)
	}
	return res, nil
}
