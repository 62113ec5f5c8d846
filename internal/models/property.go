package models

import "strings"

// Property is a catalog listing as stored on disk or in Postgres.
type Property struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	AreaSqm     float64  `json:"area_sqm"`
	ImageURL    string   `json:"image_url"`
}

// PropertyResult is the wire shape of one chat match.
type PropertyResult struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Location  string  `json:"location"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	AreaSqm   float64 `json:"area_sqm"`
	ImageURL  string  `json:"image_url"`
}

// Text is the input used to embed a listing for semantic search.
func (p Property) Text() string {
	return p.Title + " in " + p.Location + ". " + p.Description + ". Has: " + strings.Join(p.Features, ", ")
}

func (p Property) Result() PropertyResult {
	return PropertyResult{
		Title:     p.Title,
		Price:     p.Price,
		Location:  p.Location,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		AreaSqm:   p.AreaSqm,
		ImageURL:  strings.TrimSpace(p.ImageURL),
	}
}

// Results projects a slice of listings to their wire shape.
func Results(props []Property) []PropertyResult {
	out := make([]PropertyResult, 0, len(props))
	for _, p := range props {
		out = append(out, p.Result())
	}
	return out
}
