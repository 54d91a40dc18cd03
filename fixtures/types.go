package fixtures

import "fmt"

type SearchData struct {
	Locations []Location `json:"locations"`
	Postcodes []string   `json:"postcodes"`
}

type Location struct {
	Name     string  `json:"name"`
	Postcode string  `json:"postcode"`
	GeoID    string  `json:"geoId"`
	GeoName  string  `json:"geoName"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Zoom     int     `json:"zoom"`
}

// Location looks a location up by its display name.
func (d *SearchData) Location(name string) (*Location, error) {
	for i := range d.Locations {
		if d.Locations[i].Name == name {
			return &d.Locations[i], nil
		}
	}
	return nil, fmt.Errorf("%w: search location %q", ErrNotFound, name)
}

// First returns the first configured location.
func (d *SearchData) First() (*Location, error) {
	if len(d.Locations) == 0 {
		return nil, fmt.Errorf("%w: search.locations is empty", ErrNotFound)
	}
	return &d.Locations[0], nil
}

type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains is inclusive on both ends; a zero Max means unbounded.
func (r Range) Contains(v int) bool {
	if v < r.Min {
		return false
	}
	return r.Max == 0 || v <= r.Max
}

type FilterData struct {
	Price    Range             `json:"price"`
	Area     Range             `json:"area"`
	Bedrooms int               `json:"bedrooms"`
	Keywords map[string]string `json:"keywords"`
	Sort     string            `json:"sort"`
}

// Control maps a keyword to the UI control that toggles it.
func (d *FilterData) Control(keyword string) (string, error) {
	sel, ok := d.Keywords[keyword]
	if !ok || sel == "" {
		return "", fmt.Errorf("%w: filters.keywords[%q]", ErrNotFound, keyword)
	}
	return sel, nil
}

type RegistrationCase struct {
	Name          string `json:"name"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ExpectedError string `json:"expectedError"`
}
