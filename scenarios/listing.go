package scenarios

import (
	"estate_e2e/normalize"
	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Listing() []runner.Scenario {
	return []runner.Scenario{
		{Group: "listing", Name: "details match card", Run: listingDetails},
		{Group: "listing", Name: "photo gallery", Run: listingGallery},
	}
}

func listingDetails(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)
	results := env.Results()

	cards, err := results.Cards()
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	card := cards[0]

	listing, err := results.OpenListing(0)
	require.NoError(t, err)
	require.NoError(t, listing.WaitLoaded())

	d := listing.Details()
	assert.NotEmpty(t, d.MLS, "listing has no MLS number")
	assert.Greater(t, d.Price, 0)
	if card.Price > 0 {
		assert.Equal(t, card.Price, d.Price, "card and details disagree on price")
	}
	if city := normalize.City(card.Address); city != "" {
		assert.True(t, normalize.Mentions(d.Title, city), "title %q does not mention %q", d.Title, city)
	}
}

func listingGallery(t runner.T, env *runner.Env) {
	openFirstRegion(t, env)

	listing, err := env.Results().OpenListing(0)
	require.NoError(t, err)
	require.NoError(t, listing.WaitLoaded())

	assert.Greater(t, listing.PhotoCount(), 0)
	require.NoError(t, listing.OpenGallery())
}
