package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Metadata is a flat mapping of scalar values attached to documents and chunks.
// Values are strings, ints, floats or bools so they can be stored as JSON
// and matched with exact-value filters.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaURL                = "url"
	MetaTitle              = "title"
	MetaVendor             = "vendor"
	MetaProductLine        = "product_line"
	MetaRelease            = "release"
	MetaFeatures           = "features"
	MetaCategories         = "categories"
	MetaDeployment         = "deployment"
	MetaDocType            = "doc_type"
	MetaDate               = "date"
	MetaSource             = "source"
	MetaType               = "type"
	MetaAddedAt            = "added_at"
	MetaEmbeddingModel     = "embedding_model"
	MetaEmbeddingDimension = "embedding_dimension"
	MetaChunkIndex         = "chunk_index"
	MetaTotalChunks        = "total_chunks"
)

// UnknownValue is stored when a descriptive field could not be determined.
const UnknownValue = "Unknown"

// TypePlaceholder marks the record that keeps an empty collection queryable.
const TypePlaceholder = "placeholder"

// Clone returns a shallow copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// String returns the value for key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return JoinTags(t)
	default:
		return fmt.Sprint(t)
	}
}

// Merge copies entries from other that are not already set in m.
func (m Metadata) Merge(other Metadata) {
	for k, v := range other {
		if existing, ok := m[k]; ok && existing != nil && existing != "" {
			continue
		}
		m[k] = v
	}
}

// JoinTags renders a list of categorical labels as a comma-joined string.
// Labels are de-duplicated and sorted so equal sets render identically.
func JoinTags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// Chunk is a bounded-size unit of document text plus metadata.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// Text is the chunk content. Never empty once produced by the processor.
	Text string

	// Metadata is a copy of the document metadata plus chunk position.
	Metadata Metadata
}

// SourceDocument is extracted document text awaiting chunking.
type SourceDocument struct {
	// Content is the plain text of the document.
	Content string

	// Metadata is the document-level metadata every chunk inherits.
	Metadata Metadata
}
