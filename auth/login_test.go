package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate_e2e/config"
	"estate_e2e/models"
	"estate_e2e/pages"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPage records navigations. Anything else on playwright.Page panics.
type stubPage struct {
	playwright.Page
	url   string
	gotos []string
}

func (p *stubPage) URL() string { return p.url }

func (p *stubPage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.gotos = append(p.gotos, url)
	p.url = url
	return nil, nil
}

func (p *stubPage) WaitForTimeout(float64) {}

// scriptedVerifier answers IsLoggedIn from a list; past the end it says no.
type scriptedVerifier struct {
	answers []bool
	calls   int
}

func (v *scriptedVerifier) IsLoggedIn(playwright.Page) bool {
	i := v.calls
	v.calls++
	return i < len(v.answers) && v.answers[i]
}

type stubGate struct {
	err      error
	resolves int
	guards   int
}

func (g *stubGate) Guard(context.Context, Surface) pages.Guard {
	return func(string) error {
		g.guards++
		return nil
	}
}

func (g *stubGate) Resolve(context.Context, Surface, string) error {
	g.resolves++
	return g.err
}

type stubSnapshots struct {
	valid      bool
	restoreErr error
	restored   int
	persisted  int
}

func (s *stubSnapshots) Valid() bool { return s.valid }

func (s *stubSnapshots) Restore(playwright.Page) error {
	s.restored++
	return s.restoreErr
}

func (s *stubSnapshots) Persist(playwright.Page) (int, error) {
	s.persisted++
	return 3, nil
}

type stubForm struct {
	opened    bool
	filled    models.Credentials
	submitted bool
	errMsg    string
}

func (f *stubForm) Open() error {
	f.opened = true
	return nil
}

func (f *stubForm) FillCredentials(c models.Credentials) error {
	f.filled = c
	return nil
}

func (f *stubForm) Submit() (pages.Outcome, error) {
	f.submitted = true
	return pages.Outcome{Strategy: "submit button"}, nil
}

func (f *stubForm) ErrorMessage() string { return f.errMsg }

func (f *stubForm) Settle(time.Duration) {}

type loginFixture struct {
	page     *stubPage
	verifier *scriptedVerifier
	gate     *stubGate
	snaps    *stubSnapshots
	form     *stubForm
	authn    *Authenticator
}

var testCreds = models.Credentials{Email: "user@example.com", Password: "hunter2"}

func newLoginFixture(answers []bool, snaps *stubSnapshots, creds models.Credentials) *loginFixture {
	site := testSite()
	site.Paths = map[string]string{
		"account": "https://my.realtor.ca/en/account",
		"login":   "https://my.realtor.ca/en/login",
	}

	f := &loginFixture{
		page:     &stubPage{url: "https://www.realtor.ca/"},
		verifier: &scriptedVerifier{answers: answers},
		gate:     &stubGate{},
		snaps:    snaps,
		form:     &stubForm{},
	}
	f.authn = &Authenticator{
		Site:        site,
		Detector:    f.verifier,
		Challenge:   f.gate,
		Sessions:    snaps,
		Credentials: creds,
		NewForm:     func(*pages.Base) LoginForm { return f.form },
	}
	return f
}

func TestEnsure_AlreadyLoggedIn(t *testing.T) {
	f := newLoginFixture([]bool{true}, &stubSnapshots{valid: true}, testCreds)

	assert.True(t, f.authn.Ensure(context.Background(), f.page))
	assert.Equal(t, 1, f.verifier.calls)
	assert.Zero(t, f.snaps.restored)
	assert.False(t, f.form.opened)
	assert.Zero(t, f.snaps.persisted)
}

func TestEnsure_RestoresSnapshot(t *testing.T) {
	f := newLoginFixture([]bool{false, true}, &stubSnapshots{valid: true}, testCreds)

	assert.True(t, f.authn.Ensure(context.Background(), f.page))
	assert.Equal(t, 1, f.snaps.restored)
	assert.Equal(t, []string{"https://my.realtor.ca/en/account"}, f.page.gotos)
	assert.Equal(t, 1, f.gate.guards, "account page navigation is guarded")
	assert.False(t, f.form.opened)
	assert.Zero(t, f.snaps.persisted, "a restored snapshot is not rewritten")
}

func TestEnsure_StaleSnapshotFallsBackToForm(t *testing.T) {
	f := newLoginFixture([]bool{false, false, true}, &stubSnapshots{valid: true}, testCreds)

	assert.True(t, f.authn.Ensure(context.Background(), f.page))
	assert.Equal(t, 1, f.snaps.restored)
	assert.True(t, f.form.opened)
	assert.Equal(t, testCreds, f.form.filled)
	assert.True(t, f.form.submitted)
	assert.Equal(t, 1, f.gate.resolves)
	assert.Equal(t, 3, f.verifier.calls)
	assert.Equal(t, 1, f.snaps.persisted)
}

func TestEnsure_UnreadableSnapshotFallsBackToForm(t *testing.T) {
	snaps := &stubSnapshots{valid: true, restoreErr: errors.New("add cookies: bad cookie")}
	f := newLoginFixture([]bool{false, true}, snaps, testCreds)

	assert.True(t, f.authn.Ensure(context.Background(), f.page))
	assert.Empty(t, f.page.gotos)
	assert.True(t, f.form.submitted)
	assert.Equal(t, 1, f.snaps.persisted)
}

func TestEnsure_NoSnapshotGoesStraightToForm(t *testing.T) {
	f := newLoginFixture([]bool{false, true}, &stubSnapshots{}, testCreds)

	assert.True(t, f.authn.Ensure(context.Background(), f.page))
	assert.Zero(t, f.snaps.restored)
	assert.True(t, f.form.submitted)
	assert.Equal(t, 1, f.snaps.persisted)
}

func TestEnsure_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds models.Credentials
	}{
		{"none", models.Credentials{}},
		{"no password", models.Credentials{Email: "user@example.com"}},
		{"no email", models.Credentials{Password: "hunter2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoginFixture([]bool{false}, &stubSnapshots{}, tt.creds)

			assert.False(t, f.authn.Ensure(context.Background(), f.page))
			assert.False(t, f.form.opened)
			assert.Zero(t, f.snaps.persisted)
		})
	}
}

func TestEnsure_ChallengeBlocked(t *testing.T) {
	f := newLoginFixture([]bool{false, true}, &stubSnapshots{}, testCreds)
	f.gate.err = &ChallengeError{Kind: KindCheckbox, Trigger: "Incapsula incident ID", Err: ErrChallengeBlocked}

	assert.False(t, f.authn.Ensure(context.Background(), f.page))
	assert.True(t, f.form.submitted)
	assert.Equal(t, 1, f.verifier.calls, "no re-verify after a blocked challenge")
	assert.Zero(t, f.snaps.persisted)
}

func TestEnsure_LoginRejected(t *testing.T) {
	f := newLoginFixture([]bool{false, false}, &stubSnapshots{}, testCreds)
	f.form.errMsg = "Invalid email or password"

	assert.False(t, f.authn.Ensure(context.Background(), f.page))
	assert.True(t, f.form.submitted)
	assert.Zero(t, f.snaps.persisted)
}

func TestEnsure_CancelledContext(t *testing.T) {
	f := newLoginFixture([]bool{true}, &stubSnapshots{valid: true}, testCreds)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, f.authn.Ensure(ctx, f.page))
	assert.Zero(t, f.verifier.calls)
}

func TestNewAuthenticator_Wiring(t *testing.T) {
	cfg := &config.Config{}
	cfg.Browser.Mode = config.ModeHeadless
	cfg.Auth.SessionPath = "session.json"
	site := testSite()

	a := NewAuthenticator(cfg, site, testCreds)
	require.NotNil(t, a.NewForm)

	_, ok := a.Detector.(*Detector)
	assert.True(t, ok)
	h, ok := a.Challenge.(*ChallengeHandler)
	require.True(t, ok)
	assert.Equal(t, DefaultChallengePoll, h.Poll)
	assert.Equal(t, DefaultChallengeLimit, h.Limit)
	assert.NotNil(t, a.Sessions)
}
