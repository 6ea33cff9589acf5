package search

import "errors"

// ErrUnavailable is returned when no searcher can serve a query.
var ErrUnavailable = errors.New("search unavailable")

// ListingRecord is the data we index for a listing.
type ListingRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Status string // empty = all statuses
	Limit  int
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`
	Price    float64 `json:"price"`
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a free-text listing search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}
