package scenarios

import (
	"estate_e2e/pages"
	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Results() []runner.Scenario {
	return []runner.Scenario{
		{Group: "results", Name: "next page", Run: resultsNextPage},
		{Group: "results", Name: "list and card view", Run: resultsViews},
	}
}

func resultsNextPage(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)
	results := env.Results()

	first, err := results.Cards()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	out, err := results.NextPage()
	require.NoError(t, err)
	t.Logf("next page via %s", out)

	_, err = results.WaitForResults(env.Ctx)
	require.NoError(t, err)
	second, err := results.Cards()
	require.NoError(t, err)
	require.NotEmpty(t, second)

	assert.NotEqual(t, first[0].URL, second[0].URL, "page 2 starts with the same listing as page 1")
}

// resultsViews compares list and card views. A missing toggle is only
// assumed to mean the view is already active, so that case is logged and
// the card count check still has to pass.
func resultsViews(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)
	results := env.Results()

	counts := make(map[pages.View]int)
	for _, v := range []pages.View{pages.ViewGrid, pages.ViewList} {
		out, err := results.SwitchView(v)
		require.NoError(t, err)
		if out == pages.ViewAssumedActive {
			t.Logf("%s toggle not visible; assuming %s view is active (unverified)", v, v)
		}
		results.Settle(settle)

		n, err := results.WaitForResults(env.Ctx)
		require.NoError(t, err)
		counts[v] = n
	}

	assert.Greater(t, counts[pages.ViewList], 0)
	assert.Greater(t, counts[pages.ViewGrid], 0)
}
