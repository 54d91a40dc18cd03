package scenarios

import (
	"estate_e2e/runner"
	"estate_e2e/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Account scenarios only run once the runner has a logged-in page.
func Account() []runner.Scenario {
	return []runner.Scenario{
		{Group: "account", Name: "session persisted", NeedsAuth: true, Run: accountSessionPersisted},
		{Group: "account", Name: "favourite listing", NeedsAuth: true, Run: accountFavourite},
	}
}

func accountSessionPersisted(t runner.T, env *runner.Env) {
	assert.True(t, session.IsValid(env.SessionPath), "no usable session at %s", env.SessionPath)

	state, err := session.Load(env.SessionPath)
	require.NoError(t, err)
	assert.NotEmpty(t, state.Cookies)
}

func accountFavourite(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)

	listing, err := env.Results().OpenListing(0)
	require.NoError(t, err)
	require.NoError(t, listing.WaitLoaded())
	require.NoError(t, listing.SaveFavourite())
	listing.Settle(settle)

	assert.True(t, env.Auth.Detector.IsLoggedIn(listing.Page), "saving a favourite logged the session out")
}
