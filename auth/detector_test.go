package auth

import (
	"testing"

	"estate_e2e/config"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   AuthSignals
		want bool
	}{
		{"nothing", AuthSignals{}, false},
		{"auth host", AuthSignals{OnAuthHost: true}, true},
		{"auth host beats login fields", AuthSignals{OnAuthHost: true, LoginFieldsVisible: true}, true},
		{"logout link", AuthSignals{AccountVisible: true, LogoutFound: true}, true},
		{"logout link with login fields", AuthSignals{LogoutFound: true, LoginFieldsVisible: true}, true},
		{"account only", AuthSignals{AccountVisible: true}, true},
		{"account but login form showing", AuthSignals{AccountVisible: true, LoginFieldsVisible: true}, false},
		{"login form only", AuthSignals{LoginFieldsVisible: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestOnAuthHost(t *testing.T) {
	site := &config.SiteConfig{
		AuthHost: "my.realtor.ca",
		Paths:    map[string]string{"login": "https://my.realtor.ca/en/login"},
	}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://my.realtor.ca/en/account", true},
		{"https://MY.realtor.ca/en/favourites", true},
		{"https://my.realtor.ca/en/login?ReturnUrl=%2F", false},
		{"https://www.realtor.ca/map#view=list", false},
		{"https://my.realtor.ca.evil.example/en/account", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OnAuthHost(tt.url, site), tt.url)
	}

	assert.False(t, OnAuthHost("https://my.realtor.ca/", &config.SiteConfig{}))
}
