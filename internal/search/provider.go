// Package search wraps the web-search capability the research workers use
// to gather source material.
package search

import "context"

// Depth selects how thorough a search is.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Query is one search request.
type Query struct {
	Text       string
	MaxResults int
	Depth      Depth
}

// Result is one ranked search hit.
type Result struct {
	Rank          int     `json:"rank"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content,omitempty"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Provider is the search service contract.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Search runs one query and returns ranked results.
	Search(ctx context.Context, q Query) ([]Result, error)
}
