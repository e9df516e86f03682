package domain

import (
	"strings"
	"time"
)

// SourceKind identifies how a document reached the ingestion pipeline.
type SourceKind string

// Known source kinds.
const (
	SourceKindReleaseNotes SourceKind = "release_notes"
	SourceKindConfigGuides SourceKind = "config_guides"
	SourceKindArubaDocs    SourceKind = "aruba_docs"
	SourceKindPosts        SourceKind = "posts"
	SourceKindPage         SourceKind = "page"
	SourceKindScrapedData  SourceKind = "scraped_data"
)

// IngestionRecord is one entry of the idempotency ledger.
// Records are replaced, never edited in place.
type IngestionRecord struct {
	// Timestamp is when the unit was stored.
	Timestamp time.Time `json:"timestamp"`

	// Title is the document title, if known.
	Title string `json:"title,omitempty"`

	// Chunks is how many chunks were written.
	Chunks int `json:"chunks"`
}

// IngestionKey builds the ledger key for a unit of ingestion.
// The version is the reported document date or file modification time; a
// different version produces a different key so changed content is
// re-ingested instead of skipped.
func IngestionKey(kind SourceKind, vendor, locator, version string) string {
	parts := []string{}
	if v := NormaliseKey(vendor); v != "" {
		parts = append(parts, v)
	}
	parts = append(parts, strings.ToLower(string(kind)), strings.TrimSpace(locator))
	if version = strings.TrimSpace(version); version != "" && version != UnknownValue {
		parts = append(parts, version)
	}
	return strings.Join(parts, "_")
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Source     string `json:"source"`
	Discovered int    `json:"discovered"`
	Ingested   int    `json:"ingested"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Chunks     int    `json:"chunks"`

	// FailedURLs lists the documents counted in Failed, when known.
	FailedURLs []string `json:"failed_urls,omitempty"`
}

// Add accumulates another report.
func (r *IngestReport) Add(o IngestReport) {
	r.Discovered += o.Discovered
	r.Ingested += o.Ingested
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Chunks += o.Chunks
	r.FailedURLs = append(r.FailedURLs, o.FailedURLs...)
}

// UpdateReport summarises one update check of a watched source.
type UpdateReport struct {
	Source     string       `json:"source"`
	FirstCheck bool         `json:"first_check"`
	Discovered int          `json:"discovered"`
	New        int          `json:"new"`
	Changed    int          `json:"changed"`
	Ingest     IngestReport `json:"ingest"`
}
