package pages

import (
	"fmt"
	"strings"

	"estate_e2e/config"
	"estate_e2e/models"
	"estate_e2e/normalize"

	"github.com/PuerkitoBio/goquery"
)

// ParseCards extracts listing cards from a results page snapshot using the
// site's card selectors.
func ParseCards(html string, site *config.SiteConfig) ([]models.ListingCard, error) {
	cardSel := site.Selector("result_card")
	if cardSel == "" {
		return nil, fmt.Errorf("selector %q not configured for %s", "result_card", site.ID)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results html: %w", err)
	}

	var cards []models.ListingCard
	doc.Find(cardSel).Each(func(_ int, s *goquery.Selection) {
		card := models.ListingCard{
			Address: cardText(s, site.Selector("result_address")),
			Price:   normalize.ShortPrice(cardText(s, site.Selector("result_price"))),
		}
		if linkSel := site.Selector("result_link"); linkSel != "" {
			if href, ok := s.Find(linkSel).First().Attr("href"); ok {
				card.URL = site.URL(href)
			}
		}
		cards = append(cards, card)
	})
	return cards, nil
}

func cardText(s *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	return strings.Join(strings.Fields(s.Find(sel).First().Text()), " ")
}
