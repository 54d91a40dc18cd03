package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"estate_e2e/config"

	"github.com/playwright-community/playwright-go"
)

// Launcher owns the Playwright driver and one browser process. Each scenario
// gets its own context from NewSession so cookies never leak between them.
type Launcher struct {
	cfg   *config.Config
	mu    sync.Mutex
	pw    *playwright.Playwright
	br    playwright.Browser
	ready bool
}

func NewLauncher(cfg *config.Config) *Launcher {
	return &Launcher{cfg: cfg}
}

func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return nil
	}

	if !l.cfg.Browser.Preinstalled {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Browser.Mode.Headless()),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if l.cfg.Browser.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(l.cfg.Browser.SlowMo.Milliseconds()))
	}
	if l.cfg.Proxy.URL != "" {
		opts.Proxy = &playwright.Proxy{Server: l.cfg.Proxy.URL}
	}

	br, err := pw.Chromium.Launch(opts)
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	l.pw = pw
	l.br = br
	l.ready = true
	log.Printf("Browser started (mode=%s, slowmo=%s)", l.cfg.Browser.Mode, l.cfg.Browser.SlowMo)
	return nil
}

func (l *Launcher) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.br != nil {
		l.br.Close()
		l.br = nil
	}
	if l.pw != nil {
		l.pw.Stop()
		l.pw = nil
	}
	l.ready = false
}

// NewSession opens a fresh context and page.
func (l *Launcher) NewSession() (*Session, error) {
	if err := l.Start(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	br := l.br
	l.mu.Unlock()

	bc, err := br.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1366,
			Height: 900,
		},
		Locale: playwright.String("en-CA"),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}

	page, err := bc.NewPage()
	if err != nil {
		bc.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(float64(l.cfg.Browser.Timeout.Milliseconds()))

	return &Session{
		Context:       bc,
		Page:          page,
		screenshotDir: l.cfg.Browser.ScreenshotDir,
	}, nil
}

// Session is one isolated browser context with its first page.
type Session struct {
	Context       playwright.BrowserContext
	Page          playwright.Page
	screenshotDir string
}

// Screenshot saves a full-page PNG named after the scenario and returns the
// file path along with the bytes.
func (s *Session) Screenshot(name string) (string, []byte, error) {
	if err := os.MkdirAll(s.screenshotDir, 0755); err != nil {
		return "", nil, err
	}
	path := filepath.Join(s.screenshotDir, fmt.Sprintf("%s_%d.png", SafeName(name), time.Now().Unix()))
	data, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", nil, fmt.Errorf("screenshot: %w", err)
	}
	return path, data, nil
}

// DumpHTML writes the current DOM next to the screenshots for offline debugging.
func (s *Session) DumpHTML(name string) (string, error) {
	content, err := s.Page.Content()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.screenshotDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(s.screenshotDir, SafeName(name)+".html")
	return path, os.WriteFile(path, []byte(content), 0644)
}

func (s *Session) Close() {
	if s.Page != nil {
		s.Page.Close()
	}
	if s.Context != nil {
		s.Context.Close()
	}
}

// SafeName turns a scenario name into something usable as a file name.
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
