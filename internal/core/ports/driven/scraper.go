package driven

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// DocScraper discovers and fetches vendor documentation.
type DocScraper interface {
	// ListDocuments parses a listing page into the documents it links to.
	ListDocuments(ctx context.Context, src domain.WatchedSource) ([]domain.ScrapedDoc, error)

	// FetchDocument downloads a document and extracts its text.
	// Metadata derived from the page (vendor, product line, release,
	// topics) is returned alongside the text. Implementations may cache
	// pages unless ctx carries WithFreshFetch.
	FetchDocument(ctx context.Context, url string) (*FetchedDocument, error)
}

type freshFetchKey struct{}

// WithFreshFetch returns a context under which FetchDocument downloads the
// page again instead of serving a cached copy.
func WithFreshFetch(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshFetchKey{}, true)
}

// FreshFetch reports whether ctx was marked by WithFreshFetch.
func FreshFetch(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshFetchKey{}).(bool)
	return fresh
}

// FetchedDocument is the extracted text of one document.
type FetchedDocument struct {
	URL      string
	Title    string
	Content  string
	Metadata domain.Metadata
}
