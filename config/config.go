package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	SiteID    string
	SitesDir  string
	Browser   BrowserConfig
	Auth      AuthConfig
	Fixtures  FixturesConfig
	Storage   StorageConfig
	Artifacts ArtifactsConfig
	Scheduler SchedulerConfig
	Proxy     ProxyConfig
	LogPath   string
	Sites     map[string]*SiteConfig
}

type BrowserConfig struct {
	Mode          RunMode
	SlowMo        time.Duration
	Timeout       time.Duration
	ScreenshotDir string
	Preinstalled  bool
}

type AuthConfig struct {
	SessionPath    string
	UserType       string
	ChallengePoll  time.Duration
	ChallengeLimit time.Duration
	SettleDelay    time.Duration
}

type FixturesConfig struct {
	DataPath        string
	CredentialsPath string
}

type StorageConfig struct {
	DBPath      string
	PostgresURL string
}

type ArtifactsConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether failure screenshots should be shipped off-box.
func (a ArtifactsConfig) Enabled() bool {
	return a.Bucket != "" && a.AccessKeyID != ""
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ProxyConfig struct {
	URL string
}

// SiteConfig describes one target website. Selectors are looked up by logical
// name so page objects never hard-code markup.
type SiteConfig struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	BaseURL    string            `yaml:"base_url"`
	AuthHost   string            `yaml:"auth_host"`
	Paths      map[string]string `yaml:"paths"`
	Selectors  map[string]string `yaml:"selectors"`
	APIs       map[string]string `yaml:"apis"`
	Challenges ChallengeMarkers  `yaml:"challenges"`
}

type ChallengeMarkers struct {
	Ready    []string  `yaml:"ready"`
	Checkbox MarkerSet `yaml:"checkbox"`
	Image    MarkerSet `yaml:"image"`
}

type MarkerSet struct {
	Text      []string `yaml:"text"`
	Fragments []string `yaml:"fragments"`
}

// Selector returns the configured selector for name, or "" when the site does
// not define one.
func (s *SiteConfig) Selector(name string) string {
	return s.Selectors[name]
}

// Path returns the configured path for name, defaulting to "/".
func (s *SiteConfig) Path(name string) string {
	if p, ok := s.Paths[name]; ok && p != "" {
		return p
	}
	return "/"
}

// URL joins a site-relative path onto the base URL.
func (s *SiteConfig) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mode, err := ParseRunMode(getEnv("RUN_MODE", string(ModeHeadless)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SiteID:   getEnv("SITE", "realtor_ca"),
		SitesDir: getEnv("SITES_DIR", "config/sites"),
		Browser: BrowserConfig{
			Mode:          mode,
			SlowMo:        time.Duration(getEnvInt("SLOW_MO_MS", 0)) * time.Millisecond,
			Timeout:       time.Duration(getEnvInt("TIMEOUT_MS", 30000)) * time.Millisecond,
			ScreenshotDir: getEnv("SCREENSHOT_DIR", "test-results/screenshots"),
			Preinstalled:  os.Getenv("PLAYWRIGHT_PREINSTALLED") == "1",
		},
		Auth: AuthConfig{
			SessionPath:    getEnv("SESSION_PATH", ".auth/session.json"),
			UserType:       getEnv("USER_TYPE", "standard"),
			ChallengePoll:  time.Duration(getEnvInt("CHALLENGE_POLL_MS", 2000)) * time.Millisecond,
			ChallengeLimit: time.Duration(getEnvInt("CHALLENGE_TIMEOUT_MS", 120000)) * time.Millisecond,
			SettleDelay:    time.Duration(getEnvInt("SETTLE_DELAY_MS", 1500)) * time.Millisecond,
		},
		Fixtures: FixturesConfig{
			DataPath:        getEnv("FIXTURES_PATH", "fixtures/testdata.json"),
			CredentialsPath: getEnv("CREDENTIALS_PATH", "fixtures/credentials.json"),
		},
		Storage: StorageConfig{
			DBPath:      getEnv("DB_PATH", "e2e.db"),
			PostgresURL: os.Getenv("RESULTS_DB_URL"),
		},
		Artifacts: ArtifactsConfig{
			Bucket:          os.Getenv("ARTIFACTS_BUCKET"),
			Region:          getEnv("ARTIFACTS_REGION", "us-east-1"),
			Endpoint:        os.Getenv("ARTIFACTS_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARTIFACTS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARTIFACTS_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SUITE_CRON"),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		LogPath: getEnv("LOG_PATH", "e2e.log"),
		Sites:   make(map[string]*SiteConfig),
	}

	if interval := os.Getenv("SUITE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Site returns the active site configuration.
func (c *Config) Site() (*SiteConfig, error) {
	site, ok := c.Sites[c.SiteID]
	if !ok {
		return nil, fmt.Errorf("site %q not configured in %s", c.SiteID, c.SitesDir)
	}
	return site, nil
}

func (c *Config) loadSiteConfigs() error {
	entries, err := os.ReadDir(c.SitesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		site, err := LoadSite(filepath.Join(c.SitesDir, entry.Name()))
		if err != nil {
			return err
		}

		c.Sites[site.ID] = site
	}

	return nil
}

// LoadSite reads one site YAML file and fills in built-in challenge markers
// for anything the file leaves empty.
func LoadSite(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var site SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if site.ID == "" {
		return nil, fmt.Errorf("parse %s: missing id", path)
	}
	site.applyDefaults()
	return &site, nil
}

func (s *SiteConfig) applyDefaults() {
	if s.Paths == nil {
		s.Paths = make(map[string]string)
	}
	if s.Selectors == nil {
		s.Selectors = make(map[string]string)
	}
	if s.APIs == nil {
		s.APIs = make(map[string]string)
	}
	d := DefaultChallengeMarkers()
	if len(s.Challenges.Ready) == 0 {
		s.Challenges.Ready = d.Ready
	}
	if len(s.Challenges.Checkbox.Text) == 0 && len(s.Challenges.Checkbox.Fragments) == 0 {
		s.Challenges.Checkbox = d.Checkbox
	}
	if len(s.Challenges.Image.Text) == 0 && len(s.Challenges.Image.Fragments) == 0 {
		s.Challenges.Image = d.Image
	}
}

// DefaultChallengeMarkers covers the Incapsula interstitial plus the common
// checkbox and image-grid captcha widgets.
func DefaultChallengeMarkers() ChallengeMarkers {
	return ChallengeMarkers{
		Ready: []string{"listingCard", "ResultsPaginationCon"},
		Checkbox: MarkerSet{
			Text: []string{
				"Request unsuccessful. Incapsula",
				"Incapsula incident ID",
				"Please verify you are a human",
				"I am human",
			},
			Fragments: []string{"_Incapsula_Resource", "h-captcha", "cf-turnstile", "g-recaptcha", "captcha-checkbox"},
		},
		Image: MarkerSet{
			Text: []string{
				"Select all images with",
				"Click verify once there are none left",
			},
			Fragments: []string{"rc-imageselect", "task-image", "challenge-image"},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
