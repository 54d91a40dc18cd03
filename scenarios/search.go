package scenarios

import (
	"strings"
	"time"

	"estate_e2e/normalize"
	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Search() []runner.Scenario {
	return []runner.Scenario{
		{Group: "search", Name: "by location", Run: searchByLocation},
		{Group: "search", Name: "by postcode", Run: searchByPostcode},
		{Group: "search", Name: "suggestions", Run: searchSuggestions},
	}
}

func searchByLocation(t runner.T, env *runner.Env) {
	loc, err := env.SearchData(t).First()
	require.NoError(t, err)

	home := env.Home()
	require.NoError(t, home.Open())

	out, err := home.SearchLocation(loc.Name)
	require.NoError(t, err)
	t.Logf("search submitted via %s", out)

	n, err := env.Results().WaitForResults(env.Ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.True(t, env.Net.WaitObserved(env.Ctx, "PropertySearch", 10*time.Second),
		"no PropertySearch request observed")
}

func searchByPostcode(t runner.T, env *runner.Env) {
	data := env.SearchData(t)
	require.NotEmpty(t, data.Postcodes, "no postcodes in fixture")

	home := env.Home()
	require.NoError(t, home.Open())

	_, err := home.SearchLocation(data.Postcodes[0])
	require.NoError(t, err)

	n, err := env.Results().WaitForResults(env.Ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	listings, err := env.Net.Listings("property_search")
	require.NoError(t, err)
	require.NotEmpty(t, listings)

	fsa := normalize.Postcode(data.Postcodes[0])
	if len(fsa) > 3 {
		fsa = fsa[:3]
	}
	near := 0
	for _, l := range listings {
		if strings.HasPrefix(l.Postcode, fsa) {
			near++
		}
	}
	t.Logf("%d of %d listings in %s", near, len(listings), fsa)
}

func searchSuggestions(t runner.T, env *runner.Env) {
	loc, err := env.SearchData(t).First()
	require.NoError(t, err)

	home := env.Home()
	require.NoError(t, home.Open())

	city := normalize.City(loc.Name)
	prefix := city
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	suggestions, err := home.SearchSuggestions(prefix)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	found := false
	for _, s := range suggestions {
		if normalize.Mentions(s, city) {
			found = true
			break
		}
	}
	assert.True(t, found, "no suggestion mentions %q: %v", city, suggestions)
}
