// Package scrape crawls company websites and extracts contact data from them.
package scrape

import "context"

// Page is one fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
