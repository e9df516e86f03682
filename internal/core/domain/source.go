package domain

import (
	"strings"
	"time"
)

// DocType identifies the listing format of a watched source.
type DocType string

// Supported document types.
const (
	DocTypeReleaseNotes DocType = "release_notes"
	DocTypeConfigGuides DocType = "config_guides"
	DocTypeArubaDocs    DocType = "aruba_docs"
	DocTypePosts        DocType = "posts"
	DocTypePage         DocType = "page"
)

// IsValid returns true if the doc type is recognised.
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeReleaseNotes, DocTypeConfigGuides, DocTypeArubaDocs, DocTypePosts, DocTypePage:
		return true
	default:
		return false
	}
}

// SourceKind returns the ledger source kind for documents of this type.
func (t DocType) SourceKind() SourceKind {
	return SourceKind(t)
}

// WatchedSource is a listing page checked for new or changed documents.
type WatchedSource struct {
	// URL is the listing page.
	URL string `toml:"url"`

	// Vendor is the vendor the documents belong to.
	Vendor string `toml:"vendor"`

	// DocType selects the listing parser.
	DocType DocType `toml:"doc_type"`

	// Interval overrides the default check interval when non-zero.
	Interval Duration `toml:"interval,omitempty"`
}

// Key identifies the source in the last-seen state store.
func (s WatchedSource) Key() string {
	return NormaliseKey(s.Vendor) + "_" + strings.ToLower(string(s.DocType))
}

// CollectionKey returns the logical collection key documents are stored under.
func (s WatchedSource) CollectionKey() string {
	if s.DocType == DocTypePosts {
		return CollectionHackerNews
	}
	return NormaliseKey(s.Vendor)
}

// ScrapedDoc is a document discovered on a listing page.
type ScrapedDoc struct {
	Title   string
	URL     string
	Date    string
	Vendor  string
	DocType DocType

	// Metadata holds listing-level attributes such as version.
	Metadata Metadata
}

// DefaultWatchedSources returns the sources checked out of the box.
func DefaultWatchedSources() []WatchedSource {
	return []WatchedSource{
		{
			URL:     "https://www.cisco.com/c/en/us/support/switches/nexus-9000-series-switches/products-release-notes-list.html",
			Vendor:  "cisco",
			DocType: DocTypeReleaseNotes,
		},
		{
			URL:     "https://www.cisco.com/c/en/us/support/switches/nexus-9000-series-switches/products-installation-and-configuration-guides-list.html",
			Vendor:  "cisco",
			DocType: DocTypeConfigGuides,
		},
		{
			URL:     "https://arubanetworking.hpe.com/techdocs/AOS-CX/Consolidated_RNs/HTML-9300/Content/PDFs.htm",
			Vendor:  "aruba",
			DocType: DocTypeArubaDocs,
		},
		{
			URL:      "https://news.ycombinator.com/",
			Vendor:   "hackernews",
			DocType:  DocTypePosts,
			Interval: Duration(time.Minute),
		},
	}
}
