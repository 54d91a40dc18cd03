package models

// ListingCard is what a results page shows for one listing. Beds and
// Postcode are only known when the card came from an API response.
type ListingCard struct {
	Address  string `json:"address"`
	Price    int    `json:"price"`
	URL      string `json:"url"`
	Beds     int    `json:"beds,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// ListingDetails is what the listing page shows once opened.
type ListingDetails struct {
	Title      string `json:"title"`
	Address    string `json:"address"`
	Price      int    `json:"price"`
	MLS        string `json:"mls"`
	PhotoCount int    `json:"photo_count"`
	URL        string `json:"url"`
}

// InterceptedRequest is one entry of the network harness log.
type InterceptedRequest struct {
	Seq          int    `json:"seq" db:"seq"`
	URL          string `json:"url" db:"url"`
	Method       string `json:"method" db:"method"`
	ResourceType string `json:"resource_type" db:"resource_type"`
	Mocked       bool   `json:"mocked" db:"mocked"`
}
