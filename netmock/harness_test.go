package netmock

import (
	"context"
	"sync"
	"testing"
	"time"

	"estate_e2e/config"
	"estate_e2e/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *Harness {
	t.Helper()
	site, err := config.LoadSite("../config/sites/realtor_ca.yaml")
	require.NoError(t, err)
	fx, err := fixtures.Load("../fixtures/testdata/fixtures.json")
	require.NoError(t, err)
	return New(site, fx)
}

func TestObserved_SubstringSemantics(t *testing.T) {
	h := newHarness(t)
	h.record("https://api2.realtor.ca/Listing.svc/PropertySearch_Post", "POST", "xhr")
	h.record("https://www.realtor.ca/map#view=list", "GET", "document")

	tests := []struct {
		substr string
		want   bool
	}{
		{"PropertySearch", true},
		{"propertysearch", false},
		{"view=list", true},
		{"Property*", false},
		{"api2.realtor.ca/Listing", true},
		{"geoIds", false},
		{"", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.Observed(tt.substr), "substr %q", tt.substr)
	}
}

func TestObserved_EmptyLog(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.Observed(""))
	assert.False(t, h.Observed("realtor"))
}

func TestLogKeepsOrderAndDuplicates(t *testing.T) {
	h := newHarness(t)
	h.record("https://a.example/1", "GET", "script")
	h.record("https://a.example/2", "GET", "xhr")
	h.record("https://a.example/1", "GET", "script")

	assert.Equal(t, []string{"https://a.example/1", "https://a.example/2", "https://a.example/1"}, h.URLs())
	assert.Equal(t, 2, h.Count("/1"))
	assert.Equal(t, 3, h.Len())

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, 3, entries[2].Seq)
	assert.Equal(t, "xhr", entries[1].ResourceType)
}

func TestURLsReturnsCopy(t *testing.T) {
	h := newHarness(t)
	h.record("https://a.example/1", "GET", "xhr")

	urls := h.URLs()
	urls[0] = "mutated"
	assert.Equal(t, []string{"https://a.example/1"}, h.URLs())
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.record("https://a.example/1", "GET", "xhr")
	h.markMocked("https://a.example/1")
	h.Reset()

	assert.Empty(t, h.URLs())
	h.record("https://a.example/1", "GET", "xhr")
	assert.False(t, h.Entries()[0].Mocked)
	assert.Equal(t, 1, h.Entries()[0].Seq)
}

func TestMarkMocked(t *testing.T) {
	h := newHarness(t)
	h.record("https://www.realtor.ca/api/v1/PropertySearch?x=1", "POST", "fetch")
	h.markMocked("https://www.realtor.ca/api/v1/PropertySearch?x=1")
	h.record("https://www.realtor.ca/api/v1/PropertySearch?x=1", "POST", "fetch")

	entries := h.Entries()
	assert.True(t, entries[0].Mocked)
	assert.True(t, entries[1].Mocked)
}

func TestConcurrentRecord(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.record("https://a.example/x", "GET", "xhr")
			_ = h.Observed("x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, h.Count("a.example"))
}

func TestWaitObserved(t *testing.T) {
	h := newHarness(t)
	go func() {
		time.Sleep(20 * time.Millisecond)
		h.record("https://www.realtor.ca/api/v1/PropertySearch", "POST", "fetch")
	}()

	assert.True(t, h.WaitObserved(context.Background(), "PropertySearch", 2*time.Second))
	assert.False(t, h.WaitObserved(context.Background(), "PropertyDetails", 50*time.Millisecond))
}

func TestMockWithoutPage(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.Mock("**/x", 200, nil), ErrNotObserving)
	assert.ErrorIs(t, h.Unmock("**/x"), ErrNotObserving)
}

func TestMockAPI_Errors(t *testing.T) {
	h := newHarness(t)

	err := h.MockAPI("no_such_api", "")
	assert.ErrorContains(t, err, "no_such_api")

	err = h.MockAPI("property_search", "no_such_fixture")
	assert.ErrorIs(t, err, fixtures.ErrNotFound)

	err = h.MockAPI("property_search", "property_search_empty")
	assert.ErrorIs(t, err, ErrNotObserving)
}

func TestApiFor(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "property_search", h.apiFor("https://www.realtor.ca/api/v1/PropertySearch?CurrentPage=1"))
	assert.Equal(t, "autocomplete", h.apiFor("https://www.realtor.ca/api/v1/Location/AutoComplete?q=tor"))
	assert.Empty(t, h.apiFor("https://www.realtor.ca/map"))
}

func TestListings(t *testing.T) {
	h := newHarness(t)
	_, err := h.Listings("property_search")
	assert.Error(t, err)

	body, err := h.fixtures.MockAPI("property_search")
	require.NoError(t, err)
	h.responses["property_search"] = body

	cards, err := h.Listings("property_search")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 777777, cards[0].Price)
	assert.Equal(t, "1 Mock Street Toronto, Ontario M5V2T6", cards[0].Address)
	assert.Equal(t, 3, cards[0].Beds)
	assert.Equal(t, "M5V2T6", cards[0].Postcode)
	assert.Equal(t, "https://www.realtor.ca/real-estate/99999001/1-mock-street-toronto", cards[0].URL)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType([]byte(` {"a":1}`)))
	assert.Equal(t, "application/json", contentType([]byte(`[]`)))
	assert.Equal(t, "text/plain", contentType([]byte(`ok`)))
}
