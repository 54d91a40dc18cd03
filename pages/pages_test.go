package pages

import (
	"os"
	"testing"

	"estate_e2e/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSite(t *testing.T) *config.SiteConfig {
	t.Helper()
	site, err := config.LoadSite("../config/sites/realtor_ca.yaml")
	require.NoError(t, err)
	return site
}

func TestParseCards(t *testing.T) {
	html, err := os.ReadFile("testdata/results.html")
	require.NoError(t, err)

	cards, err := ParseCards(string(html), loadSite(t))
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, 1149900, cards[0].Price)
	assert.Equal(t, "12 Main Street Toronto, Ontario M5V2T6", cards[0].Address)
	assert.Equal(t, "https://www.realtor.ca/real-estate/27512345/12-main-street-toronto", cards[0].URL)

	assert.Equal(t, 849000, cards[1].Price)
	assert.Equal(t, "https://www.realtor.ca/real-estate/27512346/4-elm-avenue-toronto", cards[1].URL)

	assert.Zero(t, cards[2].Price)
	assert.Empty(t, cards[2].URL)
}

func TestParseCards_NoCards(t *testing.T) {
	cards, err := ParseCards("<html><body><p>nothing</p></body></html>", loadSite(t))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestParseCards_MissingSelector(t *testing.T) {
	site := &config.SiteConfig{ID: "bare"}
	_, err := ParseCards("<html></html>", site)
	assert.ErrorContains(t, err, "result_card")
}

func TestRegionURL(t *testing.T) {
	site := loadSite(t)

	got := RegionURL(site, "g30_dpz89rm7", "Toronto, ON", 0)
	assert.Equal(t,
		"https://www.realtor.ca/map#view=list&CurrentPage=1&GeoIds=g30_dpz89rm7&GeoName=Toronto%2C+ON&Sort=6-D&PropertyTypeGroupID=1&PropertySearchTypeId=1&Currency=CAD",
		got)

	assert.Contains(t, RegionURL(site, "g30_x", "Windsor", 3), "CurrentPage=3")
}

func TestCoordinateURLRoundTripsThroughParseCenter(t *testing.T) {
	site := loadSite(t)

	u := CoordinateURL(site, 43.6532, -79.3832, 11)
	assert.Contains(t, u, "ZoomLevel=11")
	assert.Contains(t, u, "Center=43.653200%2C-79.383200")

	lat, lng, ok := ParseCenter(u)
	require.True(t, ok)
	assert.InDelta(t, 43.6532, lat, 1e-6)
	assert.InDelta(t, -79.3832, lng, 1e-6)
}

func TestParseCenter(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"literal comma", "https://www.realtor.ca/map#Center=42.3149,-83.0364&ZoomLevel=10", true},
		{"no fragment", "https://www.realtor.ca/map", false},
		{"no center", "https://www.realtor.ca/map#view=list", false},
		{"garbage", "https://www.realtor.ca/map#Center=north,west", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := ParseCenter(tt.url)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestViewSelectors(t *testing.T) {
	site := loadSite(t)
	for _, v := range []View{ViewList, ViewGrid, ViewMap} {
		assert.NotEmpty(t, site.Selector(v.selector()), "view %s", v)
	}
	assert.Equal(t, "switched", ViewSwitched.String())
	assert.Equal(t, "assumed-active", ViewAssumedActive.String())
}
