package client

import "strings"

// Listing is the wire shape of a property as the API returns it. Older
// records may carry a bare "name", "address" or "location" instead of the
// structured fields, so normalization tolerates both shapes.
type Listing struct {
	ID             string  `json:"id"`
	AgentID        string  `json:"agentId"`
	Title          string  `json:"title"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	StreetAddress1 string  `json:"streetAddress1"`
	StreetAddress2 string  `json:"streetAddress2"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Zipcode        string  `json:"zipcode"`
	Address        string  `json:"address"`
	Location       string  `json:"location"`
	Bedrooms       float64 `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	ImageURL       string  `json:"imageUrl"`
}

// PropertyView is a listing normalized for display, filtering and sorting.
type PropertyView struct {
	ID          string
	AgentID     string
	Title       string
	Address     string
	Price       float64
	Bedrooms    float64
	Bathrooms   float64
	Description string
	Status      string
	ImageURL    string
}

// Normalize maps a wire listing to its view shape. This is the single
// normalization step data goes through on its way into a container.
func Normalize(l Listing) PropertyView {
	title := l.Title
	if title == "" {
		title = l.Name
	}
	if title == "" {
		title = "Untitled"
	}

	var parts []string
	for _, p := range []string{l.StreetAddress1, l.StreetAddress2, l.City, l.State, l.Zipcode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	address := strings.Join(parts, ", ")
	if address == "" {
		address = l.Address
	}
	if address == "" {
		address = l.Location
	}

	return PropertyView{
		ID:          l.ID,
		AgentID:     l.AgentID,
		Title:       title,
		Address:     address,
		Price:       l.Price,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Description: l.Description,
		Status:      l.Status,
		ImageURL:    l.ImageURL,
	}
}

// NormalizeAll maps a slice of wire listings to views, preserving order.
func NormalizeAll(listings []Listing) []PropertyView {
	views := make([]PropertyView, len(listings))
	for i, l := range listings {
		views[i] = Normalize(l)
	}
	return views
}
