package pages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryInOrder_FirstSuccessWins(t *testing.T) {
	var calls []string
	step := func(name string, err error) Strategy {
		return Strategy{Name: name, Try: func() error {
			calls = append(calls, name)
			return err
		}}
	}

	out, err := TryInOrder(
		step("suggestion", errors.New("not visible")),
		step("button", nil),
		step("enter", nil),
	)

	require.NoError(t, err)
	assert.Equal(t, "button", out.Strategy)
	assert.Equal(t, 1, out.Index)
	assert.True(t, out.Fallback())
	assert.Len(t, out.Failures, 1)
	assert.Equal(t, []string{"suggestion", "button"}, calls)
	assert.Equal(t, "button (after 1 failed)", out.String())
}

func TestTryInOrder_AllFail(t *testing.T) {
	notVisible := errors.New("not visible")
	detached := errors.New("detached")

	out, err := TryInOrder(
		Strategy{Name: "a", Try: func() error { return notVisible }},
		Strategy{Name: "b", Try: func() error { return detached }},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStrategySucceeded)
	assert.ErrorIs(t, err, notVisible)
	assert.ErrorIs(t, err, detached)
	assert.Contains(t, err.Error(), "[a, b]")
	assert.Equal(t, -1, out.Index)
	assert.Equal(t, "none", out.String())
}

func TestTryInOrder_Empty(t *testing.T) {
	_, err := TryInOrder()
	assert.ErrorIs(t, err, ErrNoStrategySucceeded)
}

func TestOutcome_PreferredIsNotFallback(t *testing.T) {
	out, err := TryInOrder(Strategy{Name: "only", Try: func() error { return nil }})
	require.NoError(t, err)
	assert.False(t, out.Fallback())
	assert.Equal(t, "only", out.String())
}
