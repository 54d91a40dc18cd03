package scenarios

import (
	"testing"

	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasNoDuplicates(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)
	assert.Len(t, reg.All(), len(All()))
}

func TestEveryGroupHasScenarios(t *testing.T) {
	reg, err := Registry()
	require.NoError(t, err)

	groups := reg.Groups()
	assert.ElementsMatch(t, []string{"account", "auth", "filters", "listing", "map", "mock", "results", "search"}, groups)
	for _, g := range groups {
		assert.NotEmpty(t, reg.Select(runner.Filter{Group: g}), g)
	}
}

func TestOnlyAccountNeedsAuth(t *testing.T) {
	for _, sc := range All() {
		assert.Equal(t, sc.Group == "account", sc.NeedsAuth, sc.ID())
		assert.NotNil(t, sc.Run, sc.ID())
	}
}
