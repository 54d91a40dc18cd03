package scenarios

import (
	"strings"

	"estate_e2e/models"
	"estate_e2e/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Auth() []runner.Scenario {
	return []runner.Scenario{
		{Group: "auth", Name: "login form", Run: authLoginForm},
		{Group: "auth", Name: "invalid credentials", Run: authInvalidCredentials},
		{Group: "auth", Name: "registration validation", Run: authRegistrationValidation},
	}
}

func authLoginForm(t runner.T, env *runner.Env) {
	login := env.Login()
	require.NoError(t, login.Open())
	assert.True(t, login.FormVisible(), "login form not visible at %s", login.URL())
}

func authInvalidCredentials(t runner.T, env *runner.Env) {
	login := env.Login()
	require.NoError(t, login.Open())
	require.NoError(t, login.FillCredentials(models.Credentials{
		Email:    "e2e.nobody@example.com",
		Password: "definitely-wrong-1",
	}))
	_, err := login.Submit()
	require.NoError(t, err)
	login.Settle(settle)

	msg := login.ErrorMessage()
	if msg == "" {
		assert.True(t, login.FormVisible(), "bad credentials left the login form without an error")
		return
	}
	t.Logf("login error: %s", msg)
}

func authRegistrationValidation(t runner.T, env *runner.Env) {
	cases, err := env.Fixtures.Registration()
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	login := env.Login()
	for _, c := range cases {
		require.NoError(t, login.Open())
		require.NoError(t, login.OpenRegistration())
		require.NoError(t, login.FillRegistration(c))
		_, err := login.SubmitRegistration()
		require.NoError(t, err, c.Name)
		login.Settle(settle)

		errs := login.ValidationErrors()
		joined := strings.ToLower(strings.Join(errs, " | "))
		assert.Contains(t, joined, strings.ToLower(c.ExpectedError), "%s: got %v", c.Name, errs)
	}
}
