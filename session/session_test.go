package session

import (
	"os"
	"path/filepath"
	"testing"

	"estate_e2e/models"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		file string
		want bool
	}{
		{"valid.json", true},
		{"playwright_state.json", true},
		{"empty.json", false},
		{"no_cookies_key.json", false},
		{"truncated.json", false},
		{"does_not_exist.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(filepath.Join("testdata", tt.file)))
		})
	}
}

func TestLoad_MissingFileIsEmptyNotError(t *testing.T) {
	state, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, state.Valid())
}

func TestLoad_MalformedIsError(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "truncated.json"))
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".auth", "session.json")
	state := &models.SessionState{Cookies: []models.Cookie{
		{Name: "a", Value: "b", Domain: ".realtor.ca", Path: "/", Secure: true, SameSite: "Lax"},
	}}

	require.NoError(t, Save(path, state))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, state.Cookies, loaded.Cookies)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestToPlaywright(t *testing.T) {
	got := ToPlaywright([]models.Cookie{
		{Name: "a", Value: "b", Domain: ".realtor.ca", Expires: 1767225600, SameSite: "Lax"},
		{Name: "c", Value: "d"},
	}, "https://www.realtor.ca")
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Name)
	require.NotNil(t, got[0].Domain)
	assert.Equal(t, ".realtor.ca", *got[0].Domain)
	require.NotNil(t, got[0].Path)
	assert.Equal(t, "/", *got[0].Path)
	require.NotNil(t, got[0].Expires)
	require.NotNil(t, got[0].SameSite)
	assert.Equal(t, playwright.SameSiteAttribute("Lax"), *got[0].SameSite)

	assert.Nil(t, got[0].URL)

	assert.Nil(t, got[1].Domain)
	assert.Nil(t, got[1].Path)
	require.NotNil(t, got[1].URL)
	assert.Equal(t, "https://www.realtor.ca", *got[1].URL)
	assert.Nil(t, got[1].Expires)
	assert.Nil(t, got[1].SameSite)
}

func TestToPlaywright_MinimalSnapshotIsReplayable(t *testing.T) {
	state, err := Load(filepath.Join("testdata", "valid.json"))
	require.NoError(t, err)
	require.True(t, state.Valid())

	for _, c := range ToPlaywright(state.Cookies, "https://www.realtor.ca") {
		hasURL := c.URL != nil && *c.URL != ""
		hasDomain := c.Domain != nil && c.Path != nil
		assert.True(t, hasURL || hasDomain, "cookie %s has neither url nor domain/path", c.Name)
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "session.json"), "https://www.realtor.ca")
	assert.False(t, store.Valid())

	require.NoError(t, Save(store.Path, &models.SessionState{Cookies: []models.Cookie{{Name: "a", Value: "b"}}}))
	assert.True(t, store.Valid())
}

func TestFromPlaywright(t *testing.T) {
	lax := playwright.SameSiteAttribute("Lax")
	got := FromPlaywright([]playwright.Cookie{
		{Name: "a", Value: "b", Domain: ".realtor.ca", Path: "/", HttpOnly: true, SameSite: &lax},
	})
	require.Len(t, got, 1)
	assert.Equal(t, models.Cookie{Name: "a", Value: "b", Domain: ".realtor.ca", Path: "/", HTTPOnly: true, SameSite: "Lax"}, got[0])
}
