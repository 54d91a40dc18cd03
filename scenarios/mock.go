package scenarios

import (
	"strings"
	"time"

	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Mock() []runner.Scenario {
	return []runner.Scenario{
		{Group: "mock", Name: "mocked search results", Run: mockSearchResults},
		{Group: "mock", Name: "mocked empty results", Run: mockEmptyResults},
		{Group: "mock", Name: "request log", Run: mockRequestLog},
	}
}

func mockSearchResults(t runner.T, env *runner.Env) {
	require.NoError(t, env.Net.MockAPI("property_search", ""))

	loc, err := env.SearchData(t).First()
	require.NoError(t, err)
	m := env.Map()
	require.NoError(t, m.OpenRegion(loc.GeoID, loc.GeoName))

	results := m.Results()
	_, err = results.WaitForResults(env.Ctx)
	require.NoError(t, err)

	cards, err := results.Cards()
	require.NoError(t, err)
	found := false
	for _, c := range cards {
		if strings.Contains(c.Address, "Mock Street") {
			found = true
			break
		}
	}
	assert.True(t, found, "mocked listing not rendered: %v", cards)

	mocked := 0
	for _, e := range env.Net.Entries() {
		if e.Mocked {
			mocked++
		}
	}
	assert.Greater(t, mocked, 0, "no request was answered by the mock")
}

func mockEmptyResults(t runner.T, env *runner.Env) {
	require.NoError(t, env.Net.MockAPI("property_search", "property_search_empty"))

	loc, err := env.SearchData(t).First()
	require.NoError(t, err)
	m := env.Map()
	require.NoError(t, m.OpenRegion(loc.GeoID, loc.GeoName))
	require.True(t, env.Net.WaitObserved(env.Ctx, "PropertySearch", 15*time.Second))
	m.Settle(settle)

	assert.Equal(t, 0, m.Results().CardCount())
}

func mockRequestLog(t runner.T, env *runner.Env) {
	home := env.Home()
	require.NoError(t, home.Open())

	host := strings.TrimPrefix(strings.TrimPrefix(env.Site.BaseURL, "https://"), "http://")
	assert.True(t, env.Net.Observed(host), "no request to %s logged", host)
	assert.Greater(t, env.Net.Len(), 0)

	env.Net.Reset()
	assert.Equal(t, 0, env.Net.Len())
	assert.Empty(t, env.Net.URLs())
}
