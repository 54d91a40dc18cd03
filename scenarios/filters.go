package scenarios

import (
	"sort"

	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Filters() []runner.Scenario {
	return []runner.Scenario{
		{Group: "filters", Name: "price range", Run: filterPriceRange},
		{Group: "filters", Name: "bedrooms", Run: filterBedrooms},
		{Group: "filters", Name: "keyword", Run: filterKeyword},
		{Group: "filters", Name: "sort by price", Run: sortByPrice},
	}
}

func filterPriceRange(t runner.T, env *runner.Env) {
	f := env.FilterData(t)
	openFirstRegion(t, env)

	results := env.Results()
	require.NoError(t, results.OpenFilters())
	require.NoError(t, results.ApplyPriceRange(f.Price))
	_, err := results.ApplyFilters()
	require.NoError(t, err)
	results.Settle(settle)

	_, err = results.WaitForResults(env.Ctx)
	require.NoError(t, err)

	prices, err := results.CardPrices()
	require.NoError(t, err)
	require.NotEmpty(t, prices, "no priced cards after filtering")
	for _, p := range prices {
		assert.True(t, f.Price.Contains(p), "price %d outside %d-%d", p, f.Price.Min, f.Price.Max)
	}
}

func filterBedrooms(t runner.T, env *runner.Env) {
	f := env.FilterData(t)
	before := openFirstRegion(t, env)

	results := env.Results()
	require.NoError(t, results.OpenFilters())
	require.NoError(t, results.ApplyBedrooms(f.Bedrooms))
	_, err := results.ApplyFilters()
	require.NoError(t, err)
	results.Settle(settle)

	after, err := results.WaitForResults(env.Ctx)
	require.NoError(t, err)
	t.Logf("cards before=%d after=%d", before, after)

	if total, err := results.TotalCount(); err == nil {
		assert.Greater(t, total, 0)
	}

	// The API response carries bedroom counts the cards do not show.
	listings, err := env.Net.Listings("property_search")
	require.NoError(t, err)
	for _, l := range listings {
		if l.Beds > 0 {
			assert.GreaterOrEqual(t, l.Beds, f.Bedrooms, "%s has %d beds", l.Address, l.Beds)
		}
	}
}

func filterKeyword(t runner.T, env *runner.Env) {
	f := env.FilterData(t)
	control, err := f.Control("garage")
	require.NoError(t, err)
	openFirstRegion(t, env)

	results := env.Results()
	require.NoError(t, results.OpenFilters())
	require.NoError(t, results.ApplyKeyword(control))
	out, err := results.ApplyFilters()
	require.NoError(t, err)
	t.Logf("filters applied via %s", out)
	results.Settle(settle)

	n, err := results.WaitForResults(env.Ctx)
	if err != nil {
		t.Skip("no listings match keyword filter:", err)
	}
	assert.Greater(t, n, 0)
}

func sortByPrice(t runner.T, env *runner.Env) {
	f := env.FilterData(t)
	openFirstRegion(t, env)

	results := env.Results()
	require.NoError(t, results.SortBy(f.Sort))
	results.Settle(settle)
	_, err := results.WaitForResults(env.Ctx)
	require.NoError(t, err)

	prices, err := results.CardPrices()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(prices), 2, "need at least two priced cards to check order")
	assert.True(t, sort.IntsAreSorted(prices), "prices not ascending: %v", prices)
}
