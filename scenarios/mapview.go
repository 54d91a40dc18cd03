package scenarios

import (
	"time"

	"estate_e2e/pages"
	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Map() []runner.Scenario {
	return []runner.Scenario{
		{Group: "map", Name: "open at coordinates", Run: mapAtCoordinates},
		{Group: "map", Name: "toggle map and list", Run: mapToggle},
	}
}

func mapAtCoordinates(t runner.T, env *runner.Env) {
	data := env.SearchData(t)
	require.GreaterOrEqual(t, len(data.Locations), 2)
	loc := data.Locations[1]

	m := env.Map()
	require.NoError(t, m.OpenAt(loc.Lat, loc.Lng, loc.Zoom))
	require.NoError(t, m.WaitVisible("map_canvas", 15*time.Second))

	lat, lng, ok := m.Center()
	require.True(t, ok, "map address has no centre: %s", m.URL())
	assert.InDelta(t, loc.Lat, lat, 0.05)
	assert.InDelta(t, loc.Lng, lng, 0.05)

	n, err := m.Results().WaitForResults(env.Ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func mapToggle(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)
	m := env.Map()

	out, err := m.ShowMap()
	require.NoError(t, err)
	t.Logf("map view: %s", out)
	if out == pages.ViewSwitched {
		assert.True(t, m.Visible("map_canvas"), "map canvas hidden after switching to map view")
	}

	out, err = m.ShowList()
	require.NoError(t, err)
	t.Logf("list view: %s", out)

	n, err := m.Results().WaitForResults(env.Ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}
