package pages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"estate_e2e/config"
)

const mapDefaults = "Sort=6-D&PropertyTypeGroupID=1&PropertySearchTypeId=1&Currency=CAD"

type MapPage struct {
	*Base
	results *ResultsPage
}

func NewMapPage(b *Base) *MapPage {
	return &MapPage{Base: b, results: NewResultsPage(b)}
}

// RegionURL builds the list-view map URL for a geo region.
func RegionURL(site *config.SiteConfig, geoID, geoName string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s#view=list&CurrentPage=%d&GeoIds=%s&GeoName=%s&%s",
		site.URL(site.Path("map")), page, geoID, url.QueryEscape(geoName), mapDefaults)
}

// CoordinateURL builds a map URL centred on lat/lng.
func CoordinateURL(site *config.SiteConfig, lat, lng float64, zoom int) string {
	return fmt.Sprintf("%s#ZoomLevel=%d&Center=%s%%2C%s&view=list&%s",
		site.URL(site.Path("map")), zoom,
		strconv.FormatFloat(lat, 'f', 6, 64), strconv.FormatFloat(lng, 'f', 6, 64),
		mapDefaults)
}

// ParseCenter reads the Center=lat,lng pair out of a map URL fragment.
func ParseCenter(raw string) (lat, lng float64, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Fragment == "" {
		return 0, 0, false
	}
	values, err := url.ParseQuery(u.EscapedFragment())
	if err != nil {
		return 0, 0, false
	}
	parts := strings.Split(values.Get("Center"), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (p *MapPage) OpenRegion(geoID, geoName string) error {
	if err := p.Goto(RegionURL(p.Site, geoID, geoName, 1)); err != nil {
		return err
	}
	p.AcceptConsent()
	return nil
}

func (p *MapPage) OpenAt(lat, lng float64, zoom int) error {
	if err := p.Goto(CoordinateURL(p.Site, lat, lng, zoom)); err != nil {
		return err
	}
	p.AcceptConsent()
	return nil
}

func (p *MapPage) ShowList() (ViewOutcome, error) {
	return p.results.SwitchView(ViewList)
}

func (p *MapPage) ShowMap() (ViewOutcome, error) {
	return p.results.SwitchView(ViewMap)
}

// Center returns the coordinates the map currently reports in its address.
func (p *MapPage) Center() (lat, lng float64, ok bool) {
	return ParseCenter(p.URL())
}

// Results exposes the result list rendered alongside the map.
func (p *MapPage) Results() *ResultsPage {
	return p.results
}
