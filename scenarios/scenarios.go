// Package scenarios holds the user journeys the runner executes. Each file
// is one group.
package scenarios

import (
	"time"

	"estate_e2e/runner"

	"github.com/stretchr/testify/require"
)

const settle = 1500 * time.Millisecond

// All returns every scenario in the order they should run.
func All() []runner.Scenario {
	var all []runner.Scenario
	all = append(all, Search()...)
	all = append(all, Filters()...)
	all = append(all, Map()...)
	all = append(all, Results()...)
	all = append(all, Listing()...)
	all = append(all, Auth()...)
	all = append(all, Account()...)
	all = append(all, Mock()...)
	return all
}

// Registry builds a runner registry over All.
func Registry() (*runner.Registry, error) {
	return runner.NewRegistry(All()...)
}

// openFirstRegion lands on the list view for the first fixture location and
// waits for cards.
func openFirstRegion(t runner.T, env *runner.Env) int {
	t.Helper()
	loc, err := env.SearchData(t).First()
	require.NoError(t, err)

	m := env.Map()
	require.NoError(t, m.OpenRegion(loc.GeoID, loc.GeoName))
	n, err := m.Results().WaitForResults(env.Ctx)
	require.NoError(t, err)
	return n
}
