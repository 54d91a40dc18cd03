package netmock

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"estate_e2e/models"
	"estate_e2e/normalize"
)

type propertySearchResponse struct {
	Results []json.RawMessage `json:"Results"`
}

type propertySearchResult struct {
	RelativeURLEn string `json:"RelativeURLEn"`
	PostalCode    string `json:"PostalCode"`
	Building      struct {
		Bedrooms string `json:"Bedrooms"`
	} `json:"Building"`
	Property struct {
		Price   string `json:"Price"`
		Address struct {
			AddressText string `json:"AddressText"`
		} `json:"Address"`
	} `json:"Property"`
}

// ParsePropertySearch turns a PropertySearch API body into listing cards the
// way the results page would render them.
func ParsePropertySearch(data []byte, baseURL string) ([]models.ListingCard, error) {
	var resp propertySearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	cards := make([]models.ListingCard, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var r propertySearchResult
		if err := json.Unmarshal(raw, &r); err != nil {
			log.Printf("Failed to parse listing: %v", err)
			continue
		}
		above, below := normalize.Bedrooms(r.Building.Bedrooms)
		cards = append(cards, models.ListingCard{
			Address:  strings.TrimSpace(strings.ReplaceAll(r.Property.Address.AddressText, "|", " ")),
			Price:    normalize.Price(r.Property.Price),
			URL:      strings.TrimRight(baseURL, "/") + r.RelativeURLEn,
			Beds:     above + below,
			Postcode: normalize.Postcode(r.PostalCode),
		})
	}
	return cards, nil
}
