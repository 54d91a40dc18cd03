package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RunMode
		wantErr bool
	}{
		{"", ModeHeadless, false},
		{"headless", ModeHeadless, false},
		{" CI ", ModeHeadless, false},
		{"interactive", ModeInteractive, false},
		{"Headed", ModeInteractive, false},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRunMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.True(t, ModeInteractive.Interactive())
	assert.False(t, ModeInteractive.Headless())
	assert.True(t, ModeHeadless.Headless())
}

func TestLoadSiteAppliesChallengeDefaults(t *testing.T) {
	site, err := LoadSite("sites/realtor_ca.yaml")
	require.NoError(t, err)

	assert.Equal(t, "realtor_ca", site.ID)
	assert.Equal(t, "my.realtor.ca", site.AuthHost)
	assert.Equal(t, []string{"listingCard", "ResultsPaginationCon"}, site.Challenges.Ready)

	d := DefaultChallengeMarkers()
	assert.Equal(t, d.Checkbox, site.Challenges.Checkbox)
	assert.Equal(t, d.Image, site.Challenges.Image)
}

func TestLoadSiteRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: nobody\n"), 0644))

	_, err := LoadSite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestLoadSiteKeepsExplicitMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := "id: custom\nbase_url: https://example.com\nchallenges:\n  checkbox:\n    fragments: [my-gate]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	site, err := LoadSite(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-gate"}, site.Challenges.Checkbox.Fragments)
	assert.Empty(t, site.Challenges.Checkbox.Text)
	assert.Equal(t, DefaultChallengeMarkers().Image, site.Challenges.Image)
	assert.NotNil(t, site.Selectors)
}

func TestSiteURLPathSelector(t *testing.T) {
	site := &SiteConfig{
		BaseURL:   "https://www.realtor.ca/",
		Paths:     map[string]string{"map": "/map", "login": "https://my.realtor.ca/en/login"},
		Selectors: map[string]string{"search_input": "#homeSearchTxt"},
	}

	assert.Equal(t, "https://www.realtor.ca/map", site.URL(site.Path("map")))
	assert.Equal(t, "https://my.realtor.ca/en/login", site.URL(site.Path("login")))
	assert.Equal(t, "/", site.Path("unknown"))
	assert.Equal(t, "https://www.realtor.ca/", site.URL(site.Path("unknown")))
	assert.Equal(t, "#homeSearchTxt", site.Selector("search_input"))
	assert.Empty(t, site.Selector("nope"))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SITES_DIR", "sites")
	t.Setenv("RUN_MODE", "interactive")
	t.Setenv("CHALLENGE_POLL_MS", "500")
	t.Setenv("CHALLENGE_TIMEOUT_MS", "not-a-number")
	t.Setenv("SUITE_INTERVAL", "30m")
	t.Setenv("ARTIFACTS_BUCKET", "e2e-artifacts")
	t.Setenv("ARTIFACTS_ACCESS_KEY_ID", "AKIA")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeInteractive, cfg.Browser.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Auth.ChallengePoll)
	assert.Equal(t, 2*time.Minute, cfg.Auth.ChallengeLimit, "bad ints fall back to the default")
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	assert.True(t, cfg.Artifacts.Enabled())

	site, err := cfg.Site()
	require.NoError(t, err)
	assert.Equal(t, "REALTOR.ca", site.Name)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("SITES_DIR", "sites")
	t.Setenv("RUN_MODE", "turbo")

	_, err := Load()
	assert.Error(t, err)
}

func TestSiteUnknown(t *testing.T) {
	cfg := &Config{SiteID: "zillow", SitesDir: "sites", Sites: map[string]*SiteConfig{}}
	_, err := cfg.Site()
	assert.Error(t, err)
}
