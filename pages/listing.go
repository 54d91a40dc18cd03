package pages

import (
	"strings"

	"estate_e2e/models"
	"estate_e2e/normalize"
)

type ListingPage struct {
	*Base
}

func NewListingPage(b *Base) *ListingPage {
	return &ListingPage{Base: b}
}

// WaitLoaded waits for the price block, the last thing the details page fills.
func (p *ListingPage) WaitLoaded() error {
	return p.WaitVisible("listing_price", waitTimeout)
}

// Title is the page heading, which on this site is the street address.
// Details derives the normalised address from it.
func (p *ListingPage) Title() string {
	return p.text("listing_title")
}

func (p *ListingPage) Price() int {
	return normalize.Price(p.text("listing_price"))
}

func (p *ListingPage) MLS() string {
	return p.text("listing_mls")
}

func (p *ListingPage) PhotoCount() int {
	return p.Count("listing_photos")
}

// Details snapshots everything the page shows about the listing.
func (p *ListingPage) Details() models.ListingDetails {
	title := p.Title()
	return models.ListingDetails{
		Title:      title,
		Address:    normalize.Address(title),
		Price:      p.Price(),
		MLS:        p.MLS(),
		PhotoCount: p.PhotoCount(),
		URL:        p.URL(),
	}
}

func (p *ListingPage) SaveFavourite() error {
	return p.Click("listing_favourite")
}

func (p *ListingPage) OpenGallery() error {
	return p.Click("listing_gallery")
}

func (p *ListingPage) text(name string) string {
	t, err := p.Text(name)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(t), " ")
}
