package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"estate_e2e/models"

	"github.com/playwright-community/playwright-go"
)

// Load reads a snapshot from disk. A missing file is not an error; it yields
// an empty snapshot that reports itself invalid.
func Load(path string) (*models.SessionState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &models.SessionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}

	var state models.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return &state, nil
}

// IsValid reports whether path holds a snapshot with at least one cookie.
// Unreadable or malformed files count as invalid.
func IsValid(path string) bool {
	state, err := Load(path)
	if err != nil {
		log.Printf("Session snapshot unusable: %v", err)
		return false
	}
	return state.Valid()
}

// Save writes the snapshot through a temp file so a crash never leaves a
// half-written file behind.
func Save(path string, state *models.SessionState) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Apply replays the snapshot's cookies into a browser context. Cookies saved
// without a domain are scoped to baseURL.
func Apply(bc playwright.BrowserContext, state *models.SessionState, baseURL string) error {
	if !state.Valid() {
		return fmt.Errorf("session snapshot has no cookies")
	}
	if err := bc.AddCookies(ToPlaywright(state.Cookies, baseURL)); err != nil {
		return fmt.Errorf("add cookies: %w", err)
	}
	log.Printf("Applied %d cookies from session snapshot", len(state.Cookies))
	return nil
}

// Capture snapshots the context's current cookies.
func Capture(bc playwright.BrowserContext) (*models.SessionState, error) {
	cookies, err := bc.Cookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	return &models.SessionState{Cookies: FromPlaywright(cookies)}, nil
}

// ToPlaywright converts snapshot cookies. Playwright needs either a URL or a
// domain and path, so a cookie without a domain gets baseURL.
func ToPlaywright(cookies []models.Cookie, baseURL string) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.Domain != "" {
			oc.Domain = playwright.String(c.Domain)
			path := c.Path
			if path == "" {
				path = "/"
			}
			oc.Path = playwright.String(path)
		} else if baseURL != "" {
			oc.URL = playwright.String(baseURL)
		}
		if c.Expires > 0 {
			oc.Expires = playwright.Float(c.Expires)
		}
		if c.SameSite != "" {
			ss := playwright.SameSiteAttribute(c.SameSite)
			oc.SameSite = &ss
		}
		out = append(out, oc)
	}
	return out
}

func FromPlaywright(cookies []playwright.Cookie) []models.Cookie {
	out := make([]models.Cookie, 0, len(cookies))
	for _, c := range cookies {
		mc := models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			mc.SameSite = string(*c.SameSite)
		}
		out = append(out, mc)
	}
	return out
}

// Store is the snapshot file for one site.
type Store struct {
	Path    string
	BaseURL string
}

func NewStore(path, baseURL string) *Store {
	return &Store{Path: path, BaseURL: baseURL}
}

func (s *Store) Valid() bool {
	return IsValid(s.Path)
}

// Restore loads the snapshot into the page's browser context.
func (s *Store) Restore(page playwright.Page) error {
	state, err := Load(s.Path)
	if err != nil {
		return err
	}
	return Apply(page.Context(), state, s.BaseURL)
}

// Persist writes the page context's cookies to disk and returns how many
// were saved.
func (s *Store) Persist(page playwright.Page) (int, error) {
	state, err := Capture(page.Context())
	if err != nil {
		return 0, err
	}
	if err := Save(s.Path, state); err != nil {
		return 0, err
	}
	return len(state.Cookies), nil
}
