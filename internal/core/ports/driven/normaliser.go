package driven

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// Normaliser extracts plain text from a fetched document.
// Each normaliser handles specific MIME types (e.g., PDF, HTML).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise transforms a raw document into extracted text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Title is the document title if one could be found.
	Title string

	// Content is the extracted plain text.
	Content string

	// Metadata carries format-specific attributes (page count, etc).
	Metadata domain.Metadata
}
